package models

import (
	"sbs/src/types"
)

type State struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `json:"name,omitempty"`

	types.Timestamps
}

type City struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	StateID uint   `json:"state_id,omitempty"`
	Name    string `json:"name,omitempty"`

	State State `json:"-"`

	types.Timestamps
}

// Area is the recognized home-service coverage list. A booking whose pincode
// matches an Area carries no home-visit surcharge.
type Area struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	CityID  uint   `json:"city_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Pincode string `gorm:"index" json:"pincode,omitempty"`

	City City `json:"-"`

	types.Timestamps
}
