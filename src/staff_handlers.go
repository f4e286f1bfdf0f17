package main

import (
	"errors"
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

// Staff availability has no direct toggle here. The flag is owned by the
// delivery transitions and the assignment resolver; admins control the
// roster through is_active only.
func staffHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("", middlewares.RequireRoles(types.ROLE_ADMIN))
	admin.
		GET("/staff", func(ctx *gin.Context) {
			db := db.GetDb()
			var staff []models.Staff
			if err := db.
				Model(&models.Staff{}).
				Preload("User").
				Order("id asc").
				Find(&staff).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": staff, "count": len(staff)})
		}).
		POST("/staff", func(ctx *gin.Context) {
			var body types.CreateStaffRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			hash, err := utils.HashPassword(body.Password)
			if err != nil {
				log.Printf("Error hashing password: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			db := db.GetDb()
			var staff models.Staff
			err = db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.Model(&models.User{}).Where("email = ?", body.Email).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return errors.New("an account with this email already exists")
				}
				user := models.User{
					Name:         body.Name,
					Email:        body.Email,
					PasswordHash: hash,
					Role:         types.ROLE_STAFF,
				}
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
				staff = models.Staff{
					UserID:      user.ID,
					Phone:       body.Phone,
					IsActive:    true,
					IsAvailable: true,
				}
				if err := tx.Create(&staff).Error; err != nil {
					return err
				}
				staff.User = user
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": staff})
		}).
		PUT("/staff/:id/active", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body struct {
				IsActive *bool `json:"is_active" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var staff models.Staff
				if err := tx.
					Model(&models.Staff{}).
					Where("id = ?", params.ID).
					First(&staff).
					Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.ErrNotFound
					}
					return err
				}
				return tx.
					Model(&models.Staff{}).
					Where("id = ?", staff.ID).
					Update("is_active", *body.IsActive).
					Error
			})
			if err != nil {
				abortWithEngineError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/staff/jobs", func(ctx *gin.Context) {
			db := db.GetDb()
			var tasks []models.JobTask
			if err := db.
				Model(&models.JobTask{}).
				Order("runs_at asc").
				Find(&tasks).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tasks, "count": len(tasks)})
		})

	return g
}
