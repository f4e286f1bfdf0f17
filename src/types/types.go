package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type ReservationStatus string

const (
	RESERVATION_PENDING   ReservationStatus = "pending"
	RESERVATION_APPROVED  ReservationStatus = "approved"
	RESERVATION_REJECTED  ReservationStatus = "rejected"
	RESERVATION_CANCELED  ReservationStatus = "cancelled"
	RESERVATION_COMPLETED ReservationStatus = "completed"
)

type OrderStatus string

const (
	ORDER_PENDING          OrderStatus = "pending"
	ORDER_PENDING_DELIVERY OrderStatus = "pending_delivery"
	ORDER_OUT_FOR_DELIVERY OrderStatus = "out_for_delivery"
	ORDER_DELIVERED        OrderStatus = "delivered"
	ORDER_PAID             OrderStatus = "paid"
	ORDER_CANCELED         OrderStatus = "cancelled"
)

type DeliveryStatus string

const (
	DELIVERY_PENDING    DeliveryStatus = "pending"
	DELIVERY_DISPATCHED DeliveryStatus = "dispatched"
	DELIVERY_DELIVERED  DeliveryStatus = "delivered"
)

type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "pending"
	TRANSACTION_PAID     TransactionStatus = "paid"
	TRANSACTION_CANCELED TransactionStatus = "cancelled"
)

type ServiceKind string

const (
	SERVICE_SALON ServiceKind = "salon"
	SERVICE_HOME  ServiceKind = "home"
)

const (
	ROLE_ADMIN    = "admin"
	ROLE_STAFF    = "staff"
	ROLE_CUSTOMER = "customer"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SlotsQueryParams struct {
	ServiceID uint   `form:"service_id" binding:"required"`
	Date      string `form:"date" binding:"required,bookabledate"`
}

type CreateAppointmentRequestBody struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	Date      string `json:"date" binding:"required,bookabledate"`
	Time      string `json:"time" binding:"required"`
	StaffID   *uint  `json:"staff_id,omitempty"`
}

type CreateBookingRequestBody struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	Date      string `json:"date" binding:"required,bookabledate"`
	Time      string `json:"time" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Pincode   string `json:"pincode,omitempty"`
	StaffID   *uint  `json:"staff_id,omitempty"`
}

type AssignStaffRequestBody struct {
	StaffID uint `json:"staff_id" binding:"required"`
}

type CreateServiceRequestBody struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price" binding:"required"`
	DurationMins uint    `json:"duration_mins" binding:"required"`
	Kind         string  `json:"kind,omitempty"`
	CategoryID   *uint   `json:"category_id,omitempty"`
}

type CreateStaffRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

type AddToCartRequestBody struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  uint `json:"quantity,omitempty"`
}

type CreateOrderRequestBody struct {
	CartID uint `json:"cart_id" binding:"required"`
}

type CreateDeliveryRequestBody struct {
	OrderID uint `json:"order_id" binding:"required"`
}

type UpdateDeliveryStatusRequestBody struct {
	Status string `json:"status" binding:"required"`
}

type ConfirmPaymentRequestBody struct {
	OrderID     uint   `json:"order_id" binding:"required"`
	ReferenceID string `json:"reference_id" binding:"required"`
}

type AppointmentsQueryFilters struct {
	Date string `form:"date,omitempty"`
}
