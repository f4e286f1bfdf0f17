package models

import (
	"sbs/src/types"
)

type Category struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `gorm:"uniqueIndex" json:"slug,omitempty"`

	types.Timestamps
}

type Service struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	Name         string            `json:"name,omitempty"`
	Slug         string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description  string            `json:"description,omitempty"`
	Price        float64           `json:"price"`
	DurationMins uint              `json:"duration_mins,omitempty"`
	Kind         types.ServiceKind `gorm:"default:'salon'" json:"kind,omitempty"`
	CategoryID   *uint             `json:"category_id,omitempty"`

	Category *Category `json:"category,omitempty"`

	types.Timestamps
}
