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
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func catalogHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/services", func(ctx *gin.Context) {
			db := db.GetDb()
			var services []models.Service
			if err := db.
				Model(&models.Service{}).
				Preload("Category").
				Order("name asc").
				Find(&services).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
		}).
		GET("/services/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var service models.Service
			if err := db.
				Model(&models.Service{}).
				Where("id = ?", params.ID).
				Preload("Category").
				First(&service).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					abortWithEngineError(ctx, utils.ErrNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": service})
		}).
		GET("/products", func(ctx *gin.Context) {
			db := db.GetDb()
			var products []models.Product
			if err := db.
				Model(&models.Product{}).
				Order("name asc").
				Find(&products).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
		}).
		GET("/areas", func(ctx *gin.Context) {
			db := db.GetDb()
			var areas []models.Area
			if err := db.
				Model(&models.Area{}).
				Order("pincode asc").
				Find(&areas).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": areas, "count": len(areas)})
		})
	return g
}

func serviceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("", middlewares.RequireRoles(types.ROLE_ADMIN))
	admin.
		POST("/services", func(ctx *gin.Context) {
			var body types.CreateServiceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			kind := types.SERVICE_SALON
			if body.Kind != "" {
				if body.Kind != string(types.SERVICE_SALON) && body.Kind != string(types.SERVICE_HOME) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown service kind"})
					return
				}
				kind = types.ServiceKind(body.Kind)
			}
			db := db.GetDb()
			service := models.Service{
				Name:         body.Name,
				Slug:         slug.Make(body.Name),
				Description:  body.Description,
				Price:        body.Price,
				DurationMins: body.DurationMins,
				Kind:         kind,
				CategoryID:   body.CategoryID,
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&service).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": service})
		}).
		PUT("/services/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateServiceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var service models.Service
				if err := tx.
					Model(&models.Service{}).
					Where("id = ?", params.ID).
					First(&service).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				updates := map[string]any{
					"name":          body.Name,
					"slug":          slug.Make(body.Name),
					"description":   body.Description,
					"price":         body.Price,
					"duration_mins": body.DurationMins,
				}
				if body.Kind != "" {
					updates["kind"] = body.Kind
				}
				return tx.
					Model(&models.Service{}).
					Where("id = ?", service.ID).
					Updates(updates).
					Error
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/services/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var service models.Service
				if err := tx.
					Model(&models.Service{}).
					Where("id = ?", params.ID).
					First(&service).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				return tx.Delete(&service).Error
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/products", func(ctx *gin.Context) {
			var body struct {
				Name        string  `json:"name" binding:"required"`
				Description string  `json:"description,omitempty"`
				Price       float64 `json:"price" binding:"required"`
				Stock       uint    `json:"stock,omitempty"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			product := models.Product{
				Name:        body.Name,
				Slug:        slug.Make(body.Name),
				Description: body.Description,
				Price:       body.Price,
				Stock:       body.Stock,
			}
			if err := db.Create(&product).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": product})
		}).
		POST("/categories", func(ctx *gin.Context) {
			var body struct {
				Name string `json:"name" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			category := models.Category{Name: body.Name, Slug: slug.Make(body.Name)}
			if err := db.Create(&category).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": category})
		})

	return g
}
