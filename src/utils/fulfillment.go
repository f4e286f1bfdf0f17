package utils

import (
	"errors"
	"sbs/src/models"
	"sbs/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryTransition is the planned outcome of a delivery status change:
// the new delivery status, the order status it maps to, and whether the
// assigned staff's availability flips.
type DeliveryTransition struct {
	Delivery       types.DeliveryStatus
	Order          types.OrderStatus
	StaffAvailable *bool
	StampAssigned  bool
	StampDelivered bool
}

// ResolveDeliveryTransition maps a requested status onto the coupled
// delivery/order/staff changes. Canonical delivery statuses are pending,
// dispatched and delivered; out_for_delivery and pending_delivery are
// accepted as aliases from older clients.
func ResolveDeliveryTransition(requested string) (*DeliveryTransition, error) {
	switch requested {
	case "pending", "pending_delivery":
		return &DeliveryTransition{
			Delivery: types.DELIVERY_PENDING,
			Order:    types.ORDER_PENDING_DELIVERY,
		}, nil
	case "dispatched", "out_for_delivery":
		claimed := false
		return &DeliveryTransition{
			Delivery:       types.DELIVERY_DISPATCHED,
			Order:          types.ORDER_OUT_FOR_DELIVERY,
			StaffAvailable: &claimed,
			StampAssigned:  true,
		}, nil
	case "delivered":
		freed := true
		return &DeliveryTransition{
			Delivery:       types.DELIVERY_DELIVERED,
			Order:          types.ORDER_DELIVERED,
			StaffAvailable: &freed,
			StampDelivered: true,
		}, nil
	}
	return nil, ErrInvalidStatus
}

// ApplyDeliveryTransition moves a delivery, its order and the assigned
// staff's availability in one step. When actorStaffID is set the delivery
// must currently be assigned to that staff. The caller provides the
// transaction; all three writes commit or roll back together.
func ApplyDeliveryTransition(tx *gorm.DB, deliveryID uint, requested string, actorStaffID *uint) (*models.Delivery, *models.Order, error) {
	var delivery models.Delivery
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", deliveryID).
		First(&delivery).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if actorStaffID != nil && (delivery.StaffID == nil || *delivery.StaffID != *actorStaffID) {
		return nil, nil, ErrForbidden
	}
	step, err := ResolveDeliveryTransition(requested)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{"status": step.Delivery}
	if step.StampAssigned {
		updates["assigned_at"] = now
		delivery.AssignedAt = &now
	}
	if step.StampDelivered {
		updates["delivered_at"] = now
		delivery.DeliveredAt = &now
	}
	if err := tx.
		Model(&models.Delivery{}).
		Where("id = ?", delivery.ID).
		Updates(updates).
		Error; err != nil {
		return nil, nil, err
	}
	delivery.Status = step.Delivery

	if step.StaffAvailable != nil && delivery.StaffID != nil {
		if err := tx.
			Model(&models.Staff{}).
			Where("id = ?", *delivery.StaffID).
			Update("is_available", *step.StaffAvailable).
			Error; err != nil {
			return nil, nil, err
		}
	}

	var order models.Order
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", delivery.OrderID).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if err := tx.
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", step.Order).
		Error; err != nil {
		return nil, nil, err
	}
	order.Status = step.Order

	return &delivery, &order, nil
}

// ReassignDelivery hands a delivery to a new staff member: the previous
// assignee, if any, gets their availability back before the new one is
// claimed, all inside the caller's transaction.
func ReassignDelivery(tx *gorm.DB, deliveryID uint, staffID uint) (*models.Delivery, *models.Order, error) {
	var delivery models.Delivery
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", deliveryID).
		First(&delivery).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var st models.Staff
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", staffID).
		First(&st).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !st.IsActive {
		return nil, nil, ErrNotFound
	}

	if delivery.StaffID != nil && *delivery.StaffID != st.ID {
		if err := tx.
			Model(&models.Staff{}).
			Where("id = ?", *delivery.StaffID).
			Update("is_available", true).
			Error; err != nil {
			return nil, nil, err
		}
	}
	if err := tx.
		Model(&models.Staff{}).
		Where("id = ?", st.ID).
		Update("is_available", false).
		Error; err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := tx.
		Model(&models.Delivery{}).
		Where("id = ?", delivery.ID).
		Updates(map[string]any{
			"staff_id":    st.ID,
			"status":      types.DELIVERY_DISPATCHED,
			"assigned_at": now,
		}).
		Error; err != nil {
		return nil, nil, err
	}
	delivery.StaffID = &st.ID
	delivery.Status = types.DELIVERY_DISPATCHED
	delivery.AssignedAt = &now

	var order models.Order
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", delivery.OrderID).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if err := tx.
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", types.ORDER_OUT_FOR_DELIVERY).
		Error; err != nil {
		return nil, nil, err
	}
	order.Status = types.ORDER_OUT_FOR_DELIVERY

	return &delivery, &order, nil
}
