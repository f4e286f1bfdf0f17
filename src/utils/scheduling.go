package utils

import (
	"errors"
	"sbs/src/models"
	"sbs/src/types"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflicting reservation")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not authorized for this resource")
	ErrInvalidStatus     = errors.New("invalid status")
)

const (
	WorkdayOpenHour  = 9
	WorkdayCloseHour = 18
	SlotStrideMins   = 30

	// Flat charge for home visits outside the recognized service areas.
	HomeVisitSurcharge = 200
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

type BusyInterval struct {
	StaffID uint
	Start   time.Time
	End     time.Time
}

type Slot struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	AvailableStaff []uint    `json:"available_staff"`
}

// GenerateSlots walks the workday in fixed strides and emits every window of
// the service duration that at least one staff member can take. Slots with
// nobody free are dropped. The result is ordered by start time and staff ids
// are ascending, so callers can pick deterministically.
func GenerateSlots(day time.Time, durationMins uint, roster []models.Staff, busy []BusyInterval) []Slot {
	ids := make([]uint, 0, len(roster))
	for _, st := range roster {
		ids = append(ids, st.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	byStaff := make(map[uint][]BusyInterval)
	for _, b := range busy {
		byStaff[b.StaffID] = append(byStaff[b.StaffID], b)
	}

	open := time.Date(day.Year(), day.Month(), day.Day(), WorkdayOpenHour, 0, 0, 0, day.Location())
	close := time.Date(day.Year(), day.Month(), day.Day(), WorkdayCloseHour, 0, 0, 0, day.Location())
	dur := time.Duration(durationMins) * time.Minute

	slots := make([]Slot, 0)
	for cursor := open; !cursor.Add(dur).After(close); cursor = cursor.Add(SlotStrideMins * time.Minute) {
		end := cursor.Add(dur)
		free := make([]uint, 0, len(ids))
		for _, id := range ids {
			conflict := false
			for _, b := range byStaff[id] {
				if Overlaps(cursor, end, b.Start, b.End) {
					conflict = true
					break
				}
			}
			if !conflict {
				free = append(free, id)
			}
		}
		if len(free) > 0 {
			slots = append(slots, Slot{Start: cursor, End: end, AvailableStaff: free})
		}
	}
	return slots
}

// ActiveIntervals loads the pending/approved appointment and booking
// intervals for the given staff that touch [from, to). Both reservation
// tables count: a staff member out on a home booking is just as busy as one
// in the salon.
func ActiveIntervals(tx *gorm.DB, staffIDs []uint, from, to time.Time) ([]BusyInterval, error) {
	if len(staffIDs) == 0 {
		return nil, nil
	}
	active := []types.ReservationStatus{types.RESERVATION_PENDING, types.RESERVATION_APPROVED}
	busy := []BusyInterval{}

	var appts []models.Appointment
	if err := tx.
		Model(&models.Appointment{}).
		Where("staff_id IN ?", staffIDs).
		Where("status IN ?", active).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Find(&appts).
		Error; err != nil {
		return nil, err
	}
	for _, a := range appts {
		busy = append(busy, BusyInterval{StaffID: *a.StaffID, Start: a.StartsAt, End: a.EndsAt})
	}

	var bookings []models.Booking
	if err := tx.
		Model(&models.Booking{}).
		Where("staff_id IN ?", staffIDs).
		Where("status IN ?", active).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Find(&bookings).
		Error; err != nil {
		return nil, err
	}
	for _, b := range bookings {
		busy = append(busy, BusyInterval{StaffID: *b.StaffID, Start: b.StartsAt, End: b.EndsAt})
	}
	return busy, nil
}

// PickFirstFree returns the first staff member, by ascending id, with no busy
// interval overlapping [start, end). Nil when everyone is taken.
func PickFirstFree(roster []models.Staff, busy []BusyInterval, start, end time.Time) *models.Staff {
	sorted := make([]models.Staff, len(roster))
	copy(sorted, roster)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byStaff := make(map[uint][]BusyInterval)
	for _, b := range busy {
		byStaff[b.StaffID] = append(byStaff[b.StaffID], b)
	}
	for i := range sorted {
		conflict := false
		for _, b := range byStaff[sorted[i].ID] {
			if Overlaps(start, end, b.Start, b.End) {
				conflict = true
				break
			}
		}
		if !conflict {
			return &sorted[i]
		}
	}
	return nil
}

// AssignStaff resolves a staff member for the interval. Must run inside the
// same transaction as the reservation insert: the candidate rows are locked
// FOR UPDATE before the conflict scan, so two concurrent requests for the
// same staff serialize and the loser sees the winner's reservation.
func AssignStaff(tx *gorm.DB, start, end time.Time, requestedID *uint) (*models.Staff, error) {
	if requestedID != nil {
		var st models.Staff
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", *requestedID).
			First(&st).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if !st.IsActive || !st.IsAvailable {
			return nil, ErrNotFound
		}
		busy, err := ActiveIntervals(tx, []uint{st.ID}, start, end)
		if err != nil {
			return nil, err
		}
		if len(busy) > 0 {
			return nil, ErrConflict
		}
		return &st, nil
	}

	var roster []models.Staff
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Staff{IsActive: true, IsAvailable: true}).
		Order("id asc").
		Find(&roster).
		Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(roster))
	for _, st := range roster {
		ids = append(ids, st.ID)
	}
	busy, err := ActiveIntervals(tx, ids, start, end)
	if err != nil {
		return nil, err
	}
	st := PickFirstFree(roster, busy, start, end)
	if st == nil {
		return nil, ErrConflict
	}
	return st, nil
}

// NextReservationStatus validates a lifecycle action against the current
// status. Callers re-read the row under lock before applying, so a second
// approve of the same reservation fails here instead of silently repeating.
func NextReservationStatus(current types.ReservationStatus, action string) (types.ReservationStatus, error) {
	switch action {
	case "approve":
		if current == types.RESERVATION_PENDING {
			return types.RESERVATION_APPROVED, nil
		}
	case "reject":
		if current == types.RESERVATION_PENDING {
			return types.RESERVATION_REJECTED, nil
		}
	case "complete":
		if current == types.RESERVATION_APPROVED {
			return types.RESERVATION_COMPLETED, nil
		}
	case "cancel":
		if current == types.RESERVATION_PENDING || current == types.RESERVATION_APPROVED {
			return types.RESERVATION_CANCELED, nil
		}
	default:
		return "", ErrInvalidStatus
	}
	return "", ErrInvalidTransition
}

// HomeSurcharge returns the home-visit charge for a pincode. Recognized
// service areas ride free; everything else pays the flat surcharge.
func HomeSurcharge(tx *gorm.DB, pincode string) (float64, error) {
	if pincode == "" {
		return HomeVisitSurcharge, nil
	}
	var count int64
	if err := tx.
		Model(&models.Area{}).
		Where(&models.Area{Pincode: pincode}).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	return HomeVisitSurcharge, nil
}
