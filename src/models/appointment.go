package models

import (
	"log"
	"sbs/src/lib"
	"sbs/src/types"
	"time"
)

// Appointment is an in-salon reservation. The interval is half-open
// [StartsAt, EndsAt): a reservation ending exactly when another starts does
// not conflict with it.
type Appointment struct {
	ID          uint                    `gorm:"primarykey" json:"id"`
	CustomerID  uint                    `json:"customer_id,omitempty"`
	StaffID     *uint                   `json:"staff_id,omitempty"`
	ServiceID   uint                    `json:"service_id,omitempty"`
	StartsAt    time.Time               `json:"start_datetime,omitempty"`
	EndsAt      time.Time               `json:"end_datetime,omitempty"`
	Status      types.ReservationStatus `gorm:"default:'pending'" json:"status,omitempty"`
	CheckinCode *string                 `json:"checkin_code,omitempty"`

	Customer Customer `json:"customer,omitempty"`
	Staff    *Staff   `json:"staff,omitempty"`
	Service  Service  `json:"service,omitempty"`

	types.Timestamps
}

// Booking is the home-visit variant. Surcharge is fixed at creation from the
// pincode and never recomputed.
type Booking struct {
	ID          uint                    `gorm:"primarykey" json:"id"`
	CustomerID  uint                    `json:"customer_id,omitempty"`
	StaffID     *uint                   `json:"staff_id,omitempty"`
	ServiceID   uint                    `json:"service_id,omitempty"`
	StartsAt    time.Time               `json:"start_datetime,omitempty"`
	EndsAt      time.Time               `json:"end_datetime,omitempty"`
	Address     string                  `json:"address,omitempty"`
	Pincode     string                  `json:"pincode,omitempty"`
	Surcharge   float64                 `json:"surcharge"`
	Status      types.ReservationStatus `gorm:"default:'pending'" json:"status,omitempty"`
	CheckinCode *string                 `json:"checkin_code,omitempty"`

	Customer Customer `json:"customer,omitempty"`
	Staff    *Staff   `json:"staff,omitempty"`
	Service  Service  `json:"service,omitempty"`

	types.Timestamps
}

func ReservationUpdateProducer(kind string, id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("reservations_producer", "reservations-updated", payload)
	if err != nil {
		log.Printf("Error on producing message for %s [%d]: %s\n", kind, id, err.Error())
		return err
	}
	return nil
}
