package models

import (
	"log"
	"sbs/src/lib"
	"sbs/src/types"
	"time"
)

// Delivery pairs 1:1 with an Order that needs physical fulfillment. Its staff
// is the same Staff pool the reservations book against; dispatching a
// delivery claims the staff member's availability flag.
type Delivery struct {
	ID          uint                 `gorm:"primarykey" json:"id"`
	OrderID     uint                 `gorm:"uniqueIndex" json:"order_id,omitempty"`
	StaffID     *uint                `json:"staff_id,omitempty"`
	Status      types.DeliveryStatus `gorm:"default:'pending'" json:"status,omitempty"`
	AssignedAt  *time.Time           `json:"assigned_at,omitempty"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`

	Order Order  `json:"order,omitempty"`
	Staff *Staff `json:"staff,omitempty"`

	types.Timestamps
}

func DeliveryStatusProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("deliveries_producer", "deliveries-status", payload)
	if err != nil {
		log.Printf("Error on producing message for delivery [%d]: %s\n", id, err.Error())
		return err
	}
	return nil
}
