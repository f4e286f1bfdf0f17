package models

import (
	"sbs/src/types"
)

type Customer struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	UserID  uint   `gorm:"uniqueIndex" json:"user_id,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Pincode string `json:"pincode,omitempty"`

	User User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
