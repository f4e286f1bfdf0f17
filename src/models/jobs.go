package models

import (
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobTask persists scheduled one-shot jobs (appointment reminders) so boot
// can re-enqueue the ones that were still pending when the process stopped.
type JobTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Name    string      `json:"name,omitempty"`
	JobType string      `json:"job_type,omitempty"`
	RunsAt  time.Time   `json:"runs_at,omitempty"`
	Payload types.JSONB `gorm:"type:jsonb" json:"-"`
	Status  string      `gorm:"default:'pending'" json:"status,omitempty"`
	Topic   string      `json:"topic,omitempty"`
}

func (self *JobTask) CreateAndEnqueueJobTask(jobTask JobTask) (string, error) {
	var jobID string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		sid, err := lib.ScheduleOneTimeProduce(jobTask.Name, jobTask.RunsAt, jobTask.Topic, jobTask.Payload)
		if err != nil {
			return err
		}
		jobID = sid.String()
		jobTask.ID = *sid
		jobTask.JobType = "OneTimeJobStartDateTime"
		jobTask.Payload["JobID"] = jobID
		if err := tx.Create(&jobTask).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return jobID, nil
}
