package main

import (
	"log"
	"net/http"
	"sbs/src/db"
	"sbs/src/middlewares"
	"sbs/src/models"
	"sbs/src/types"
	"sbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// publishDeliveryUpdate emits the post-commit status event consumed by the
// notifications worker. Customer contact details ride in the payload so the
// consumer does not need a database round trip.
func publishDeliveryUpdate(delivery *models.Delivery, order *models.Order) {
	db := db.GetDb()
	var customer models.Customer
	if err := db.
		Model(&models.Customer{}).
		Where("id = ?", order.CustomerID).
		Preload("User").
		First(&customer).
		Error; err != nil {
		log.Printf("Could not load customer [%d] for delivery [%d]: %s\n", order.CustomerID, delivery.ID, err.Error())
		return
	}
	models.DeliveryStatusProducer(delivery.ID, map[string]any{
		"id":       delivery.ID,
		"order_id": order.ID,
		"status":   delivery.Status,
		"email":    customer.User.Email,
		"name":     customer.User.Name,
	})
}

func deliveryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	staffOnly := g.Group("", middlewares.RequireRoles(types.ROLE_STAFF, types.ROLE_ADMIN))
	staffOnly.
		POST("/deliveries", func(ctx *gin.Context) {
			var body types.CreateDeliveryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var delivery *models.Delivery
			var order *models.Order
			err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.Order{}).
					Where("id = ?", body.OrderID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count == 0 {
					return utils.ErrNotFound
				}
				if err := tx.
					Model(&models.Delivery{}).
					Where("order_id = ?", body.OrderID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return utils.ErrConflict
				}
				created := models.Delivery{OrderID: body.OrderID, Status: types.DELIVERY_PENDING}
				requested := "pending"
				if role == types.ROLE_STAFF {
					// Staff creating a delivery take it themselves and go out
					// with it immediately.
					staff, err := utils.CurrentStaff(tx, userId)
					if err != nil {
						return err
					}
					created.StaffID = &staff.ID
					requested = "dispatched"
				}
				if err := tx.Create(&created).Error; err != nil {
					return err
				}
				d, o, err := utils.ApplyDeliveryTransition(tx, created.ID, requested, nil)
				if err != nil {
					return err
				}
				delivery, order = d, o
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			go publishDeliveryUpdate(delivery, order)
			ctx.JSON(http.StatusCreated, gin.H{"data": delivery})
		}).
		PUT("/deliveries/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateDeliveryStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var delivery *models.Delivery
			var order *models.Order
			err := db.Transaction(func(tx *gorm.DB) error {
				var actor *uint
				if role == types.ROLE_STAFF {
					staff, err := utils.CurrentStaff(tx, userId)
					if err != nil {
						return err
					}
					actor = &staff.ID
				}
				d, o, err := utils.ApplyDeliveryTransition(tx, params.ID, body.Status, actor)
				if err != nil {
					return err
				}
				delivery, order = d, o
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			go publishDeliveryUpdate(delivery, order)
			ctx.JSON(http.StatusOK, gin.H{"data": delivery})
		}).
		PUT("/deliveries/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var delivery *models.Delivery
			var order *models.Order
			err := db.Transaction(func(tx *gorm.DB) error {
				var actor *uint
				if role == types.ROLE_STAFF {
					staff, err := utils.CurrentStaff(tx, userId)
					if err != nil {
						return err
					}
					actor = &staff.ID
				}
				d, o, err := utils.ApplyDeliveryTransition(tx, params.ID, "delivered", actor)
				if err != nil {
					return err
				}
				delivery, order = d, o
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			go publishDeliveryUpdate(delivery, order)
			ctx.JSON(http.StatusOK, gin.H{"data": delivery})
		}).
		GET("/deliveries/my", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var deliveries []models.Delivery
			err := db.Transaction(func(tx *gorm.DB) error {
				staff, err := utils.CurrentStaff(tx, userId)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Delivery{}).
					Where("staff_id = ?", staff.ID).
					Preload("Order").
					Order("created_at desc").
					Find(&deliveries).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": deliveries, "count": len(deliveries)})
		})

	admin := g.Group("", middlewares.RequireRoles(types.ROLE_ADMIN))
	admin.
		GET("/deliveries", func(ctx *gin.Context) {
			db := db.GetDb()
			var deliveries []models.Delivery
			if err := db.
				Model(&models.Delivery{}).
				Preload("Order").
				Preload("Staff.User").
				Order("created_at desc").
				Find(&deliveries).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": deliveries, "count": len(deliveries)})
		}).
		PUT("/deliveries/:id/assign", func(ctx *gin.Context) {
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
			var delivery *models.Delivery
			var order *models.Order
			err := db.Transaction(func(tx *gorm.DB) error {
				d, o, err := utils.ReassignDelivery(tx, params.ID, body.StaffID)
				if err != nil {
					return err
				}
				delivery, order = d, o
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			go publishDeliveryUpdate(delivery, order)
			ctx.JSON(http.StatusOK, gin.H{"data": delivery})
		})

	return g
}
