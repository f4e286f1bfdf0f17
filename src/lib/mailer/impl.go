package mailer

import (
	"fmt"
	"os"
	"sbs/src/lib"
	"time"
)

func sender() (string, string) {
	return os.Getenv("MAIL_FROM"), os.Getenv("MAIL_FROM_NAME")
}

func SendReservationConfirmation(to string, name string, serviceName string, startsAt time.Time) error {
	from, fromName := sender()
	body := fmt.Sprintf("Hi %s,\n\nYour %s reservation for %s is confirmed.\n", name, serviceName, startsAt.Format("Mon, 02 Jan 2006 15:04"))
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  "Reservation confirmed",
		Body:     body,
	})
}

func SendReservationReminder(to string, name string, serviceName string, startsAt time.Time) error {
	from, fromName := sender()
	body := fmt.Sprintf("Hi %s,\n\nA reminder for your %s reservation at %s.\n", name, serviceName, startsAt.Format("15:04"))
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  "Upcoming reservation",
		Body:     body,
	})
}

func SendDeliveryNotice(to string, name string, orderId uint, status string) error {
	from, fromName := sender()
	var body string
	switch status {
	case "delivered":
		body = fmt.Sprintf("Hi %s,\n\nOrder #%d has been delivered.\n", name, orderId)
	default:
		body = fmt.Sprintf("Hi %s,\n\nOrder #%d is out for delivery.\n", name, orderId)
	}
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("Order #%d update", orderId),
		Body:     body,
	})
}
