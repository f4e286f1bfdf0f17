package models

import (
	"sbs/src/types"

	"github.com/google/uuid"
)

type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	OrderID     uint
	Currency    string
	Amount      float64
	SourceName  string
	ReferenceID string
	Status      types.TransactionStatus `gorm:"default:'pending'"`
	Metadata    types.JSONB             `gorm:"type:jsonb"`

	types.Timestamps

	Order Order `gorm:"foreignKey:order_id" json:"-"`
}
