package common

import (
	"log"
	"sbs/src/lib"
	"sbs/src/lib/mailer"
	"time"

	"github.com/tidwall/gjson"
)

// DeliveryUpdatesConsumer emails the customer whenever a delivery status
// event lands on the broker. Handlers publish after commit, so anything we
// see here is already durable.
func DeliveryUpdatesConsumer() {
	lib.KafkaConsumeTopic("deliveries_notifier", "deliveries-status", func(value []byte) {
		email := gjson.GetBytes(value, "email").String()
		if email == "" {
			log.Println("deliveries-status: message without recipient, skipping")
			return
		}
		name := gjson.GetBytes(value, "name").String()
		orderId := uint(gjson.GetBytes(value, "order_id").Uint())
		status := gjson.GetBytes(value, "status").String()
		if err := mailer.SendDeliveryNotice(email, name, orderId, status); err != nil {
			log.Printf("Error sending delivery notice for order [%d]: %s\n", orderId, err.Error())
		}
	})
}

func ReservationRemindersConsumer() {
	lib.KafkaConsumeTopic("reminders_notifier", "reservations-reminders", func(value []byte) {
		email := gjson.GetBytes(value, "email").String()
		if email == "" {
			log.Println("reservations-reminders: message without recipient, skipping")
			return
		}
		name := gjson.GetBytes(value, "name").String()
		service := gjson.GetBytes(value, "service").String()
		startsAt, err := time.Parse(time.RFC3339, gjson.GetBytes(value, "StartsAt").String())
		if err != nil {
			log.Printf("reservations-reminders: bad StartsAt: %s\n", err.Error())
			return
		}
		if err := mailer.SendReservationReminder(email, name, service, startsAt); err != nil {
			log.Printf("Error sending reservation reminder: %s\n", err.Error())
		}
	})
}
