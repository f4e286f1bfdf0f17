package main

import (
	"errors"
	"log"
	"net/http"
	"sbs/src/config"
	"sbs/src/db"
	"sbs/src/lib/mailer"
	"sbs/src/middlewares"
	"sbs/src/models"
	"sbs/src/types"
	"sbs/src/utils"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func slotHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/slots", func(ctx *gin.Context) {
			var query types.SlotsQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, query.Date, time.Local)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var slots []utils.Slot
			err = db.Transaction(func(tx *gorm.DB) error {
				var service models.Service
				if err := tx.
					Model(&models.Service{}).
					Where("id = ?", query.ServiceID).
					First(&service).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				var roster []models.Staff
				if err := tx.
					Where(&models.Staff{IsActive: true, IsAvailable: true}).
					Order("id asc").
					Find(&roster).
					Error; err != nil {
					return err
				}
				ids := make([]uint, 0, len(roster))
				for _, st := range roster {
					ids = append(ids, st.ID)
				}
				open := time.Date(day.Year(), day.Month(), day.Day(), utils.WorkdayOpenHour, 0, 0, 0, time.Local)
				close := time.Date(day.Year(), day.Month(), day.Day(), utils.WorkdayCloseHour, 0, 0, 0, time.Local)
				busy, err := utils.ActiveIntervals(tx, ids, open, close)
				if err != nil {
					return err
				}
				slots = utils.GenerateSlots(day, service.DurationMins, roster, busy)
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
		})
	return g
}

// validateReservationWindow rejects intervals outside the workday or off the
// slot grid before any staff resolution runs.
func validateReservationWindow(start, end time.Time) error {
	open := time.Date(start.Year(), start.Month(), start.Day(), utils.WorkdayOpenHour, 0, 0, 0, start.Location())
	close := time.Date(start.Year(), start.Month(), start.Day(), utils.WorkdayCloseHour, 0, 0, 0, start.Location())
	if start.Before(open) || end.After(close) {
		return errors.New("requested time is outside bookable hours")
	}
	if start.Minute()%utils.SlotStrideMins != 0 {
		return errors.New("requested time is not on a bookable slot boundary")
	}
	return nil
}

// reservationActionGate enforces who may run a lifecycle action. Approve and
// reject are admin calls; complete belongs to the assigned staff; cancel to
// the owning customer. Admin can do all four.
func reservationActionGate(tx *gorm.DB, action string, ctx *gin.Context, customerID uint, staffID *uint) error {
	role := ctx.GetString("role")
	if role == types.ROLE_ADMIN {
		return nil
	}
	userId := ctx.GetUint("id")
	switch action {
	case "approve", "reject":
		return utils.ErrForbidden
	case "complete":
		if role != types.ROLE_STAFF {
			return utils.ErrForbidden
		}
		staff, err := utils.CurrentStaff(tx, userId)
		if err != nil {
			return utils.ErrForbidden
		}
		if staffID == nil || *staffID != staff.ID {
			return utils.ErrForbidden
		}
		return nil
	case "cancel":
		customer, err := utils.CurrentCustomer(tx, userId)
		if err != nil {
			return utils.ErrForbidden
		}
		if customer.ID != customerID {
			return utils.ErrForbidden
		}
		return nil
	}
	return utils.ErrForbidden
}

func appointmentTransitionHandler(action string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		db := db.GetDb()
		var appt models.Appointment
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", params.ID).
				First(&appt).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.ErrNotFound
				}
				return err
			}
			if err := reservationActionGate(tx, action, ctx, appt.CustomerID, appt.StaffID); err != nil {
				return err
			}
			next, err := utils.NextReservationStatus(appt.Status, action)
			if err != nil {
				return err
			}
			updates := map[string]any{"status": next}
			if action == "approve" {
				code, err := utils.GenerateCheckinCode("appointment", appt.ID)
				if err != nil {
					log.Printf("Could not generate check-in code for appointment [%d]: %s\n", appt.ID, err.Error())
				} else {
					updates["checkin_code"] = code
					appt.CheckinCode = &code
				}
			}
			if err := tx.
				Model(&models.Appointment{}).
				Where("id = ?", appt.ID).
				Updates(updates).
				Error; err != nil {
				return err
			}
			appt.Status = next
			return nil
		})
		if err != nil {
			abortWithEngineError(ctx, err)
			return
		}
		go models.ReservationUpdateProducer("appointment", appt.ID, map[string]any{
			"kind":   "appointment",
			"id":     appt.ID,
			"status": appt.Status,
		})
		if action == "approve" {
			go notifyReservationApproved("appointment", appt.ID, appt.CustomerID, appt.ServiceID, appt.StartsAt)
		}
		ctx.JSON(http.StatusOK, gin.H{"data": appt})
	}
}

func bookingTransitionHandler(action string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		db := db.GetDb()
		var booking models.Booking
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", params.ID).
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.ErrNotFound
				}
				return err
			}
			if err := reservationActionGate(tx, action, ctx, booking.CustomerID, booking.StaffID); err != nil {
				return err
			}
			next, err := utils.NextReservationStatus(booking.Status, action)
			if err != nil {
				return err
			}
			updates := map[string]any{"status": next}
			if action == "approve" {
				code, err := utils.GenerateCheckinCode("booking", booking.ID)
				if err != nil {
					log.Printf("Could not generate check-in code for booking [%d]: %s\n", booking.ID, err.Error())
				} else {
					updates["checkin_code"] = code
					booking.CheckinCode = &code
				}
			}
			if err := tx.
				Model(&models.Booking{}).
				Where("id = ?", booking.ID).
				Updates(updates).
				Error; err != nil {
				return err
			}
			booking.Status = next
			return nil
		})
		if err != nil {
			abortWithEngineError(ctx, err)
			return
		}
		go models.ReservationUpdateProducer("booking", booking.ID, map[string]any{
			"kind":   "booking",
			"id":     booking.ID,
			"status": booking.Status,
		})
		if action == "approve" {
			go notifyReservationApproved("booking", booking.ID, booking.CustomerID, booking.ServiceID, booking.StartsAt)
		}
		ctx.JSON(http.StatusOK, gin.H{"data": booking})
	}
}

// notifyReservationApproved sends the confirmation mail and enqueues the
// reminder. Runs after commit; failures only log.
func notifyReservationApproved(kind string, id uint, customerID uint, serviceID uint, startsAt time.Time) {
	db := db.GetDb()
	var customer models.Customer
	if err := db.
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Preload("User").
		First(&customer).
		Error; err != nil {
		log.Printf("Could not load customer [%d] for %s [%d]: %s\n", customerID, kind, id, err.Error())
		return
	}
	var service models.Service
	if err := db.
		Model(&models.Service{}).
		Where("id = ?", serviceID).
		First(&service).
		Error; err != nil {
		log.Printf("Could not load service [%d] for %s [%d]: %s\n", serviceID, kind, id, err.Error())
		return
	}
	if err := mailer.SendReservationConfirmation(customer.User.Email, customer.User.Name, service.Name, startsAt); err != nil {
		log.Printf("Could not send confirmation for %s [%d]: %s\n", kind, id, err.Error())
	}
	utils.ScheduleReservationReminder(kind, id, customer.User.Email, customer.User.Name, service.Name, startsAt)
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/appointments", func(ctx *gin.Context) {
			var body types.CreateAppointmentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var appt models.Appointment
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				var service models.Service
				if err := tx.
					Model(&models.Service{}).
					Where("id = ?", body.ServiceID).
					First(&service).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				start, end, err := utils.ParseReservationInterval(body.Date, body.Time, service.DurationMins)
				if err != nil {
					return err
				}
				if err := validateReservationWindow(start, end); err != nil {
					return err
				}
				staff, err := utils.AssignStaff(tx, start, end, body.StaffID)
				if err != nil {
					// Explicit staff requests fail hard. Auto-assignment
					// degrades to an unassigned reservation for the desk
					// to resolve later.
					if body.StaffID != nil || !errors.Is(err, utils.ErrConflict) {
						return err
					}
					staff = nil
				}
				appt = models.Appointment{
					CustomerID: customer.ID,
					ServiceID:  service.ID,
					StartsAt:   start,
					EndsAt:     end,
					Status:     types.RESERVATION_PENDING,
				}
				if staff != nil {
					appt.StaffID = &staff.ID
				}
				if err := tx.Create(&appt).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			go models.ReservationUpdateProducer("appointment", appt.ID, map[string]any{
				"kind":   "appointment",
				"id":     appt.ID,
				"status": appt.Status,
			})
			ctx.JSON(http.StatusCreated, gin.H{"data": appt})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var booking models.Booking
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				var service models.Service
				if err := tx.
					Model(&models.Service{}).
					Where("id = ?", body.ServiceID).
					First(&service).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				start, end, err := utils.ParseReservationInterval(body.Date, body.Time, service.DurationMins)
				if err != nil {
					return err
				}
				if err := validateReservationWindow(start, end); err != nil {
					return err
				}
				surcharge, err := utils.HomeSurcharge(tx, body.Pincode)
				if err != nil {
					return err
				}
				staff, err := utils.AssignStaff(tx, start, end, body.StaffID)
				if err != nil {
					if body.StaffID != nil || !errors.Is(err, utils.ErrConflict) {
						return err
					}
					staff = nil
				}
				booking = models.Booking{
					CustomerID: customer.ID,
					ServiceID:  service.ID,
					StartsAt:   start,
					EndsAt:     end,
					Address:    body.Address,
					Pincode:    body.Pincode,
					Surcharge:  surcharge,
					Status:     types.RESERVATION_PENDING,
				}
				if staff != nil {
					booking.StaffID = &staff.ID
				}
				if err := tx.Create(&booking).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			go models.ReservationUpdateProducer("booking", booking.ID, map[string]any{
				"kind":   "booking",
				"id":     booking.ID,
				"status": booking.Status,
			})
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/my/appointments", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var appts []models.Appointment
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Appointment{}).
					Where(&models.Appointment{CustomerID: customer.ID}).
					Preload("Service").
					Preload("Staff").
					Order("starts_at desc").
					Find(&appts).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": appts, "count": len(appts)})
		}).
		GET("/my/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Booking{}).
					Where(&models.Booking{CustomerID: customer.ID}).
					Preload("Service").
					Preload("Staff").
					Order("starts_at desc").
					Find(&bookings).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		})

	g.POST("/appointments/:id/approve", appointmentTransitionHandler("approve"))
	g.POST("/appointments/:id/reject", appointmentTransitionHandler("reject"))
	g.POST("/appointments/:id/cancel", appointmentTransitionHandler("cancel"))
	g.POST("/appointments/:id/complete", appointmentTransitionHandler("complete"))
	g.POST("/bookings/:id/approve", bookingTransitionHandler("approve"))
	g.POST("/bookings/:id/reject", bookingTransitionHandler("reject"))
	g.POST("/bookings/:id/cancel", bookingTransitionHandler("cancel"))
	g.POST("/bookings/:id/complete", bookingTransitionHandler("complete"))

	staffOnly := g.Group("", middlewares.RequireRoles(types.ROLE_STAFF, types.ROLE_ADMIN))
	staffOnly.
		GET("/staff/me/assignments", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			type assignment struct {
				Kind        string                  `json:"kind"`
				ID          uint                    `json:"id"`
				ServiceName string                  `json:"service_name"`
				StartsAt    time.Time               `json:"start_datetime"`
				EndsAt      time.Time               `json:"end_datetime"`
				Status      types.ReservationStatus `json:"status"`
				Address     string                  `json:"address,omitempty"`
			}
			var assignments []assignment
			err := db.Transaction(func(tx *gorm.DB) error {
				staff, err := utils.CurrentStaff(tx, userId)
				if err != nil {
					return err
				}
				var appts []models.Appointment
				if err := tx.
					Model(&models.Appointment{}).
					Where("staff_id = ?", staff.ID).
					Where("status IN ?", []types.ReservationStatus{types.RESERVATION_PENDING, types.RESERVATION_APPROVED}).
					Preload("Service").
					Find(&appts).
					Error; err != nil {
					return err
				}
				for _, a := range appts {
					assignments = append(assignments, assignment{
						Kind:        "appointment",
						ID:          a.ID,
						ServiceName: a.Service.Name,
						StartsAt:    a.StartsAt,
						EndsAt:      a.EndsAt,
						Status:      a.Status,
					})
				}
				var bookings []models.Booking
				if err := tx.
					Model(&models.Booking{}).
					Where("staff_id = ?", staff.ID).
					Where("status IN ?", []types.ReservationStatus{types.RESERVATION_PENDING, types.RESERVATION_APPROVED}).
					Preload("Service").
					Find(&bookings).
					Error; err != nil {
					return err
				}
				for _, b := range bookings {
					assignments = append(assignments, assignment{
						Kind:        "booking",
						ID:          b.ID,
						ServiceName: b.Service.Name,
						StartsAt:    b.StartsAt,
						EndsAt:      b.EndsAt,
						Status:      b.Status,
						Address:     b.Address,
					})
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			sort.Slice(assignments, func(i, j int) bool {
				return assignments[i].StartsAt.Before(assignments[j].StartsAt)
			})
			ctx.JSON(http.StatusOK, gin.H{"data": assignments, "count": len(assignments)})
		}).
		GET("/appointments", func(ctx *gin.Context) {
			var filters types.AppointmentsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var appts []models.Appointment
			query := db.
				Model(&models.Appointment{}).
				Preload("Service").
				Preload("Staff").
				Preload("Customer.User")
			if filters.Date != "" {
				day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, filters.Date, time.Local)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				query = query.Where("starts_at >= ? AND starts_at < ?", day, day.AddDate(0, 0, 1))
			}
			if err := query.Order("starts_at asc").Find(&appts).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": appts, "count": len(appts)})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			var filters types.AppointmentsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var bookings []models.Booking
			query := db.
				Model(&models.Booking{}).
				Preload("Service").
				Preload("Staff").
				Preload("Customer.User")
			if filters.Date != "" {
				day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, filters.Date, time.Local)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				query = query.Where("starts_at >= ? AND starts_at < ?", day, day.AddDate(0, 0, 1))
			}
			if err := query.Order("starts_at asc").Find(&bookings).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		})

	admin := g.Group("", middlewares.RequireRoles(types.ROLE_ADMIN))
	admin.
		GET("/appointments/pending", func(ctx *gin.Context) {
			db := db.GetDb()
			var appts []models.Appointment
			if err := db.
				Model(&models.Appointment{}).
				Where(&models.Appointment{Status: types.RESERVATION_PENDING}).
				Preload("Service").
				Preload("Customer.User").
				Order("starts_at asc").
				Find(&appts).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": appts, "count": len(appts)})
		}).
		POST("/appointments/:id/assign", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.AssignStaffRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var appt models.Appointment
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("id = ?", params.ID).
					First(&appt).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				if appt.Status != types.RESERVATION_PENDING && appt.Status != types.RESERVATION_APPROVED {
					return utils.ErrInvalidTransition
				}
				staff, err := utils.AssignStaff(tx, appt.StartsAt, appt.EndsAt, &body.StaffID)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Appointment{}).
					Where("id = ?", appt.ID).
					Update("staff_id", staff.ID).
					Error; err != nil {
					return err
				}
				appt.StaffID = &staff.ID
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": appt})
		}).
		POST("/bookings/:id/assign", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.AssignStaffRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("id = ?", params.ID).
					First(&booking).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				if booking.Status != types.RESERVATION_PENDING && booking.Status != types.RESERVATION_APPROVED {
					return utils.ErrInvalidTransition
				}
				staff, err := utils.AssignStaff(tx, booking.StartsAt, booking.EndsAt, &body.StaffID)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Booking{}).
					Where("id = ?", booking.ID).
					Update("staff_id", staff.ID).
					Error; err != nil {
					return err
				}
				booking.StaffID = &staff.ID
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})

	return g
}
