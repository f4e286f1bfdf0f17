package lib

import (
	"log"
	"sbs/src/types"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var scheduler gocron.Scheduler

func NewScheduler(s gocron.Scheduler) {
	scheduler = s
}

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

// ScheduleOneTimeProduce enqueues a one-shot job that publishes the payload
// to the topic when it fires. Returns the job id so callers can persist it.
func ScheduleOneTimeProduce(name string, runsAt time.Time, topic string, payload types.JSONB) (*uuid.UUID, error) {
	sched, err := GetScheduler()
	if err != nil {
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runsAt)),
		gocron.NewTask(func(p types.JSONB) {
			if err := KafkaProduceMessage("scheduler", topic, p); err != nil {
				log.Printf("Error producing scheduled message for %s: %s\n", name, err.Error())
			}
		}, payload),
	)
	if err != nil {
		log.Printf("Error creating job %s: %s\n", name, err.Error())
		return nil, err
	}
	jid := j.ID()
	log.Printf("New Job %s scheduled on: %s %s\n", name, jid.String(), runsAt.Format(time.RFC3339))
	return &jid, nil
}
