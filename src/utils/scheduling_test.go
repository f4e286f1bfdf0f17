package utils

import (
	"sbs/src/models"
	"sbs/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTime(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, time.September, 14, hour, min, 0, 0, time.Local)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", mkTime(t, 9, 0), mkTime(t, 10, 0), mkTime(t, 9, 0), mkTime(t, 10, 0), true},
		{"partial overlap", mkTime(t, 9, 0), mkTime(t, 10, 0), mkTime(t, 9, 30), mkTime(t, 10, 30), true},
		{"containment", mkTime(t, 9, 0), mkTime(t, 12, 0), mkTime(t, 10, 0), mkTime(t, 11, 0), true},
		{"disjoint", mkTime(t, 9, 0), mkTime(t, 10, 0), mkTime(t, 11, 0), mkTime(t, 12, 0), false},
		{"back to back", mkTime(t, 9, 0), mkTime(t, 10, 0), mkTime(t, 10, 0), mkTime(t, 11, 0), false},
		{"back to back reversed", mkTime(t, 10, 0), mkTime(t, 11, 0), mkTime(t, 9, 0), mkTime(t, 10, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}

func TestGenerateSlotsFullDay(t *testing.T) {
	day := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.Local)
	roster := []models.Staff{{ID: 2}, {ID: 1}}

	slots := GenerateSlots(day, 30, roster, nil)
	require.NotEmpty(t, slots)

	// 09:00 through 17:30 on a 30-minute stride.
	assert.Len(t, slots, 18)
	assert.Equal(t, mkTime(t, 9, 0), slots[0].Start)
	assert.Equal(t, mkTime(t, 9, 30), slots[0].End)
	last := slots[len(slots)-1]
	assert.Equal(t, mkTime(t, 17, 30), last.Start)
	assert.Equal(t, mkTime(t, 18, 0), last.End)

	for _, slot := range slots {
		assert.Equal(t, []uint{1, 2}, slot.AvailableStaff)
	}
}

func TestGenerateSlotsLongerDuration(t *testing.T) {
	day := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.Local)
	roster := []models.Staff{{ID: 1}}

	slots := GenerateSlots(day, 60, roster, nil)
	require.NotEmpty(t, slots)

	// A 60-minute service cannot start later than 17:00.
	assert.Len(t, slots, 17)
	last := slots[len(slots)-1]
	assert.Equal(t, mkTime(t, 17, 0), last.Start)
	assert.Equal(t, mkTime(t, 18, 0), last.End)
}

func TestGenerateSlotsExcludesBusyStaff(t *testing.T) {
	day := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.Local)
	roster := []models.Staff{{ID: 1}, {ID: 2}}
	busy := []BusyInterval{
		{StaffID: 1, Start: mkTime(t, 9, 0), End: mkTime(t, 10, 0)},
	}

	slots := GenerateSlots(day, 30, roster, busy)
	require.NotEmpty(t, slots)

	assert.Equal(t, []uint{2}, slots[0].AvailableStaff)
	assert.Equal(t, []uint{2}, slots[1].AvailableStaff)
	assert.Equal(t, []uint{1, 2}, slots[2].AvailableStaff)
}

func TestGenerateSlotsDropsFullyBookedWindows(t *testing.T) {
	day := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.Local)
	roster := []models.Staff{{ID: 1}, {ID: 2}}
	busy := []BusyInterval{
		{StaffID: 1, Start: mkTime(t, 9, 0), End: mkTime(t, 10, 0)},
		{StaffID: 2, Start: mkTime(t, 9, 0), End: mkTime(t, 10, 0)},
	}

	slots := GenerateSlots(day, 30, roster, busy)
	require.NotEmpty(t, slots)

	// 09:00 and 09:30 have nobody free and must not be offered at all.
	assert.Equal(t, mkTime(t, 10, 0), slots[0].Start)
	assert.Len(t, slots, 16)
}

func TestGenerateSlotsEmptyRoster(t *testing.T) {
	day := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.Local)
	slots := GenerateSlots(day, 30, nil, nil)
	assert.Empty(t, slots)
}

func TestPickFirstFree(t *testing.T) {
	roster := []models.Staff{{ID: 3}, {ID: 1}, {ID: 2}}
	start := mkTime(t, 10, 0)
	end := mkTime(t, 10, 30)

	st := PickFirstFree(roster, nil, start, end)
	require.NotNil(t, st)
	assert.Equal(t, uint(1), st.ID)

	busy := []BusyInterval{{StaffID: 1, Start: mkTime(t, 9, 30), End: mkTime(t, 10, 30)}}
	st = PickFirstFree(roster, busy, start, end)
	require.NotNil(t, st)
	assert.Equal(t, uint(2), st.ID)

	busy = append(busy,
		BusyInterval{StaffID: 2, Start: mkTime(t, 10, 0), End: mkTime(t, 11, 0)},
		BusyInterval{StaffID: 3, Start: mkTime(t, 10, 0), End: mkTime(t, 10, 30)},
	)
	st = PickFirstFree(roster, busy, start, end)
	assert.Nil(t, st)
}

func TestPickFirstFreeIgnoresBackToBack(t *testing.T) {
	roster := []models.Staff{{ID: 1}}
	busy := []BusyInterval{{StaffID: 1, Start: mkTime(t, 9, 0), End: mkTime(t, 10, 0)}}

	st := PickFirstFree(roster, busy, mkTime(t, 10, 0), mkTime(t, 10, 30))
	require.NotNil(t, st)
	assert.Equal(t, uint(1), st.ID)
}

func TestNextReservationStatus(t *testing.T) {
	cases := []struct {
		name    string
		current types.ReservationStatus
		action  string
		want    types.ReservationStatus
		wantErr error
	}{
		{"approve pending", types.RESERVATION_PENDING, "approve", types.RESERVATION_APPROVED, nil},
		{"reject pending", types.RESERVATION_PENDING, "reject", types.RESERVATION_REJECTED, nil},
		{"cancel pending", types.RESERVATION_PENDING, "cancel", types.RESERVATION_CANCELED, nil},
		{"cancel approved", types.RESERVATION_APPROVED, "cancel", types.RESERVATION_CANCELED, nil},
		{"complete approved", types.RESERVATION_APPROVED, "complete", types.RESERVATION_COMPLETED, nil},
		{"double approve", types.RESERVATION_APPROVED, "approve", "", ErrInvalidTransition},
		{"approve rejected", types.RESERVATION_REJECTED, "approve", "", ErrInvalidTransition},
		{"complete pending", types.RESERVATION_PENDING, "complete", "", ErrInvalidTransition},
		{"cancel completed", types.RESERVATION_COMPLETED, "cancel", "", ErrInvalidTransition},
		{"cancel cancelled", types.RESERVATION_CANCELED, "cancel", "", ErrInvalidTransition},
		{"unknown action", types.RESERVATION_PENDING, "archive", "", ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextReservationStatus(tc.current, tc.action)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHomeSurchargeNoPincode(t *testing.T) {
	// No pincode means no recognized service area match.
	charge, err := HomeSurcharge(nil, "")
	require.NoError(t, err)
	assert.Equal(t, float64(HomeVisitSurcharge), charge)
}
