package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"sbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var checkoutURL string
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				var order models.Order
				if err := tx.
					Model(&models.Order{}).
					Where(&models.Order{ID: params.ID, CustomerID: customer.ID}).
					First(&order).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				if order.Status != types.ORDER_PENDING {
					return utils.ErrInvalidTransition
				}
				successURL := fmt.Sprint(os.Getenv("APP_HOST"), "/orders/", order.ID)
				amount := int64(order.TotalAmount * 100)
				url, err := lib.CreateOrderCheckout(fmt.Sprintf("Order #%d", order.ID), "inr", amount, successURL)
				if err != nil {
					return err
				}
				checkoutURL = url
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": checkoutURL})
		}).
		POST("/payments/confirm", func(ctx *gin.Context) {
			var body types.ConfirmPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var txn models.Transaction
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				var order models.Order
				if err := tx.
					Model(&models.Order{}).
					Where(&models.Order{ID: body.OrderID, CustomerID: customer.ID}).
					First(&order).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				if order.Status != types.ORDER_PENDING {
					return utils.ErrInvalidTransition
				}
				txn = models.Transaction{
					OrderID:     order.ID,
					Currency:    "inr",
					Amount:      order.TotalAmount,
					SourceName:  "stripe",
					ReferenceID: body.ReferenceID,
					Status:      types.TRANSACTION_PAID,
				}
				if err := tx.Create(&txn).Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Order{}).
					Where("id = ?", order.ID).
					Update("status", types.ORDER_PAID).
					Error
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		})
	return g
}
