package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayIndex(t *testing.T) {
	idx, ok := DayIndex("Monday")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = DayIndex("saturday")
	require.True(t, ok)
	assert.Equal(t, 5, idx)

	_, ok = DayIndex("Sunday")
	assert.False(t, ok)

	_, ok = DayIndex("Funday")
	assert.False(t, ok)
}

func TestMinuteOfDay(t *testing.T) {
	minutes, err := MinuteOfDay("09:00")
	require.NoError(t, err)
	assert.Equal(t, 540, minutes)

	minutes, err = MinuteOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, minutes)

	for _, bad := range []string{"24:00", "9", "09:60", "ab:cd", "", "09:00:00"} {
		_, err := MinuteOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestScheduleSlotOverlaps(t *testing.T) {
	base := ScheduleSlot{Day: "Monday", StartTime: "09:00", EndTime: "10:00"}

	assert.True(t, base.Overlaps(ScheduleSlot{Day: "Monday", StartTime: "09:30", EndTime: "10:30"}))
	assert.True(t, base.Overlaps(ScheduleSlot{Day: "monday", StartTime: "08:00", EndTime: "12:00"}))

	// Half-open ranges: a shared boundary is not a collision.
	assert.False(t, base.Overlaps(ScheduleSlot{Day: "Monday", StartTime: "10:00", EndTime: "11:00"}))
	assert.False(t, base.Overlaps(ScheduleSlot{Day: "Tuesday", StartTime: "09:00", EndTime: "10:00"}))
}

func TestSortSlots(t *testing.T) {
	slots := []ScheduleSlot{
		{Day: "Wednesday", StartTime: "08:00", EndTime: "09:00"},
		{Day: "Monday", StartTime: "10:00", EndTime: "11:00"},
		{Day: "Monday", StartTime: "08:00", EndTime: "09:00"},
	}
	SortSlots(slots)

	assert.Equal(t, "Monday", slots[0].Day)
	assert.Equal(t, "08:00", slots[0].StartTime)
	assert.Equal(t, "Monday", slots[1].Day)
	assert.Equal(t, "10:00", slots[1].StartTime)
	assert.Equal(t, "Wednesday", slots[2].Day)
}

func TestParseBatch(t *testing.T) {
	start, end, err := ParseBatch("2026-08")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-09-01", end.Format("2006-01-02"))

	for _, bad := range []string{"2026", "2026-13", "aug-2026", ""} {
		_, _, err := ParseBatch(bad)
		assert.Error(t, err, bad)
	}
}
