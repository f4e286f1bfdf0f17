package main

import (
	"errors"
	"net/http"
	"sbs/src/db"
	"sbs/src/middlewares"
	"sbs/src/models"
	"sbs/src/types"
	"sbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/cart", func(ctx *gin.Context) {
			var body types.AddToCartRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var cart models.Cart
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				var product models.Product
				if err := tx.
					Model(&models.Product{}).
					Where("id = ?", body.ProductID).
					First(&product).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				if err := tx.
					Where(&models.Cart{CustomerID: customer.ID}).
					FirstOrCreate(&cart, &models.Cart{CustomerID: customer.ID}).
					Error; err != nil {
					return err
				}
				qty := body.Quantity
				if qty == 0 {
					qty = 1
				}
				var item models.CartItem
				err = tx.
					Where(&models.CartItem{CartID: cart.ID, ProductID: product.ID}).
					First(&item).
					Error
				if err == nil {
					return tx.
						Model(&models.CartItem{}).
						Where("id = ?", item.ID).
						Update("quantity", item.Quantity+qty).
						Error
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				item = models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: qty}
				return tx.Create(&item).Error
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": cart})
		}).
		GET("/cart", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var cart models.Cart
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Cart{}).
					Where(&models.Cart{CustomerID: customer.ID}).
					Preload("Items.Product").
					First(&cart).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": cart})
		}).
		POST("/orders", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var order models.Order
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				var cart models.Cart
				if err := tx.
					Model(&models.Cart{}).
					Where(&models.Cart{ID: body.CartID, CustomerID: customer.ID}).
					Preload("Items.Product").
					First(&cart).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				if len(cart.Items) == 0 {
					return errors.New("cart is empty")
				}
				var total float64
				items := make([]models.OrderItem, 0, len(cart.Items))
				for _, ci := range cart.Items {
					line := ci.Product.Price * float64(ci.Quantity)
					total += line
					items = append(items, models.OrderItem{
						ProductID: ci.ProductID,
						Quantity:  ci.Quantity,
						UnitPrice: ci.Product.Price,
					})
				}
				order = models.Order{
					CustomerID:  customer.ID,
					CartID:      &cart.ID,
					TotalAmount: total,
					Status:      types.ORDER_PENDING,
					Items:       items,
				}
				if err := tx.Create(&order).Error; err != nil {
					return err
				}
				if err := tx.
					Where("cart_id = ?", cart.ID).
					Delete(&models.CartItem{}).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		GET("/orders/my", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var orders []models.Order
			err := db.Transaction(func(tx *gorm.DB) error {
				customer, err := utils.CurrentCustomer(tx, userId)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.Order{}).
					Where(&models.Order{CustomerID: customer.ID}).
					Preload("Items.Product").
					Order("created_at desc").
					Find(&orders).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		})

	staffOnly := g.Group("", middlewares.RequireRoles(types.ROLE_STAFF, types.ROLE_ADMIN))
	staffOnly.
		GET("/orders", func(ctx *gin.Context) {
			db := db.GetDb()
			var orders []models.Order
			if err := db.
				Model(&models.Order{}).
				Preload("Items.Product").
				Preload("Customer.User").
				Order("created_at desc").
				Find(&orders).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var order models.Order
			ss := db.Session(&gorm.Session{PrepareStmt: true})
			if err := ss.
				Model(&models.Order{}).
				Where("id = ?", params.ID).
				Preload("Items.Product").
				Preload("Customer.User").
				First(&order).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					abortWithEngineError(ctx, utils.ErrNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})

	return g
}
