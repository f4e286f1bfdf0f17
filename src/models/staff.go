package models

import (
	"sbs/src/types"
)

// Staff is the single bookable resource pool. IsAvailable is a shared flag:
// it is flipped by delivery assignment and read by the booking resolver, so a
// staff member out on a delivery cannot pick up new reservations.
type Staff struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	UserID      uint   `gorm:"uniqueIndex" json:"user_id,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`

	User User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
