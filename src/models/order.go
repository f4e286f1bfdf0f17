package models

import (
	"sbs/src/types"
)

type Cart struct {
	ID         uint `gorm:"primarykey" json:"id"`
	CustomerID uint `json:"customer_id,omitempty"`

	Items []CartItem `json:"items,omitempty"`

	types.Timestamps
}

type CartItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	CartID    uint `json:"cart_id,omitempty"`
	ProductID uint `json:"product_id,omitempty"`
	Quantity  uint `gorm:"default:1" json:"quantity,omitempty"`

	Product Product `json:"product,omitempty"`

	types.Timestamps
}

// Order status is written by the fulfillment transition helpers and the
// payment confirmation handler; nothing else mutates it.
type Order struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	CustomerID  uint              `json:"customer_id,omitempty"`
	CartID      *uint             `json:"cart_id,omitempty"`
	TotalAmount float64           `json:"total_amount"`
	Status      types.OrderStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Customer Customer    `json:"customer,omitempty"`
	Items    []OrderItem `json:"items,omitempty"`

	types.Timestamps
}

type OrderItem struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	OrderID   uint    `json:"order_id,omitempty"`
	ProductID uint    `json:"product_id,omitempty"`
	Quantity  uint    `gorm:"default:1" json:"quantity,omitempty"`
	UnitPrice float64 `json:"unit_price"`

	Product Product `json:"product,omitempty"`

	types.Timestamps
}
