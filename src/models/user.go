package models

import (
	"sbs/src/types"
)

type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Email        string `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:'customer'" json:"role,omitempty"`

	types.Timestamps
}
