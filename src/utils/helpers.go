package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"sbs/src/config"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, userId uint, role string) (string, error) {
	claims := types.Claims{
		Username: email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userId)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CurrentCustomer loads the customer profile behind an authenticated user.
func CurrentCustomer(tx *gorm.DB, userId uint) (*models.Customer, error) {
	var customer models.Customer
	if err := tx.
		Model(&models.Customer{}).
		Where(&models.Customer{UserID: userId}).
		Preload("User").
		First(&customer).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// CurrentStaff loads the staff profile behind an authenticated user.
func CurrentStaff(tx *gorm.DB, userId uint) (*models.Staff, error) {
	var staff models.Staff
	if err := tx.
		Model(&models.Staff{}).
		Where(&models.Staff{UserID: userId}).
		Preload("User").
		First(&staff).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// ParseReservationInterval combines the request's date and clock fields into
// the half-open reservation interval for the service duration.
func ParseReservationInterval(date string, clock string, durationMins uint) (time.Time, time.Time, error) {
	day, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	tod, err := time.Parse(config.CLOCK_PARSE_FORMAT, clock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local)
	end := start.Add(time.Duration(durationMins) * time.Minute)
	return start, end, nil
}

// GenerateCheckinCode mints a reservation check-in code, renders its QR image
// to the codes dir and caches the code for the front desk scanner.
func GenerateCheckinCode(kind string, id uint) (string, error) {
	code := uuid.NewString()
	qrc, err := qrcode.New(code)
	if err != nil {
		return "", err
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	codesDir := path.Join(wd, "codes")
	if err := os.MkdirAll(codesDir, 0o755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("checkin_%s-%d", kind, id)
	filepath := path.Join(codesDir, fmt.Sprintf("%s.jpeg", filename))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	rd := lib.GetRedisClient()
	if rd != nil {
		rd.SetEx(context.Background(), filename, code, 48*time.Hour)
	}
	return code, nil
}

// ScheduleReservationReminder enqueues a reminder email an hour before the
// reservation starts. Past-due start times are skipped.
func ScheduleReservationReminder(kind string, id uint, email string, name string, serviceName string, startsAt time.Time) {
	runsAt := startsAt.Add(-1 * time.Hour)
	if runsAt.Before(time.Now()) {
		return
	}
	task := models.JobTask{
		Name:   fmt.Sprintf("reminder_%s_%d", kind, id),
		RunsAt: runsAt,
		Topic:  "reservations-reminders",
		Payload: types.JSONB{
			"kind":     kind,
			"id":       id,
			"email":    email,
			"name":     name,
			"service":  serviceName,
			"StartsAt": startsAt.Format(time.RFC3339),
		},
	}
	if _, err := task.CreateAndEnqueueJobTask(task); err != nil {
		log.Printf("Error scheduling reminder for %s [%d]: %s\n", kind, id, err.Error())
	}
}
