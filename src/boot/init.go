package boot

import (
	"log"
	"sbs/src/common"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Staff{},
		&models.State{},
		&models.City{},
		&models.Area{},
		&models.Category{},
		&models.Service{},
		&models.Appointment{},
		&models.Booking{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.Transaction{},
		&models.JobTask{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	SeedServiceAreas(db)

	return db
}

// SeedServiceAreas loads the default coverage list on first boot. Bookings
// from these pincodes carry no home-visit surcharge.
func SeedServiceAreas(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Area{}).Count(&count).Error; err != nil {
		log.Printf("Error counting service areas: %s\n", err.Error())
		return
	}
	if count > 0 {
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		state := models.State{Name: "Karnataka"}
		if err := tx.Create(&state).Error; err != nil {
			return err
		}
		city := models.City{StateID: state.ID, Name: "Bengaluru"}
		if err := tx.Create(&city).Error; err != nil {
			return err
		}
		areas := []models.Area{
			{CityID: city.ID, Name: "Indiranagar", Pincode: "560038"},
			{CityID: city.ID, Name: "Koramangala", Pincode: "560034"},
			{CityID: city.ID, Name: "Jayanagar", Pincode: "560041"},
			{CityID: city.ID, Name: "Whitefield", Pincode: "560066"},
		}
		if err := tx.Create(&areas).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error seeding service areas: %s\n", err.Error())
		return
	}
	log.Println("Seeded default service areas")
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	go RecoverReminderJobs()
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// RecoverReminderJobs re-enqueues reminder jobs that were still pending when
// the process last stopped. Jobs whose run time already passed are expired
// rather than fired late.
func RecoverReminderJobs() error {
	db := db.GetDb()
	ss := db.Session(&gorm.Session{PrepareStmt: true})
	var jobTasks []models.JobTask
	now := time.Now()
	err := ss.
		Model(&models.JobTask{}).
		Where(&models.JobTask{Status: "pending", JobType: "OneTimeJobStartDateTime"}).
		Find(&jobTasks).
		Error
	if err != nil {
		return err
	}
	recovered := 0
	for _, task := range jobTasks {
		if task.RunsAt.Before(now) {
			if err := db.
				Model(&models.JobTask{}).
				Where("id = ?", task.ID).
				Update("status", "expired").
				Error; err != nil {
				log.Printf("Error expiring job %s: %s\n", task.ID.String(), err.Error())
			}
			continue
		}
		if _, err := lib.ScheduleOneTimeProduce(task.Name, task.RunsAt, task.Topic, task.Payload); err != nil {
			log.Printf("Error recovering job %s: %s\n", task.ID.String(), err.Error())
			continue
		}
		recovered++
	}
	log.Printf("Recovered %d reminder jobs\n", recovered)
	return nil
}

func InitBroker() {
	go lib.KafkaCreateTopics("deliveries-status", "reservations-updated", "reservations-reminders")
	go common.DeliveryUpdatesConsumer()
	go common.ReservationRemindersConsumer()
}
