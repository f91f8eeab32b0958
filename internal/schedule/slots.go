package schedule

import (
	"sort"
	"time"

	"github.com/derekprior/fixturegen/internal/config"
)

// Slot represents a candidate match cell: a date, venue, and time slot index.
type Slot struct {
	Date     time.Time
	Venue    string
	TimeSlot int // 1-based index within the day
	Assigned bool
}

// GenerateSlots builds every (date, time slot, venue) cell between start and
// end inclusive, sorted by date, then time slot, then venue. Each venue gets
// the larger of the two daily limits as its physical slot count; the lower
// weekday limit is enforced as policy by the scheduler's daily cap.
//
// No venues, or an inverted range, yields no slots.
func GenerateSlots(venues []string, start, end time.Time, rules config.Rules) []Slot {
	if len(venues) == 0 {
		return nil
	}

	perVenue := rules.SlotsPerVenue()
	var slots []Slot
	for _, d := range DateRange(start, end) {
		for _, v := range venues {
			for i := 1; i <= perVenue; i++ {
				slots = append(slots, Slot{Date: d, Venue: v, TimeSlot: i})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		if slots[i].TimeSlot != slots[j].TimeSlot {
			return slots[i].TimeSlot < slots[j].TimeSlot
		}
		return slots[i].Venue < slots[j].Venue
	})

	return slots
}

// FreeSlots counts slots not yet assigned.
func FreeSlots(slots []Slot) int {
	n := 0
	for _, s := range slots {
		if !s.Assigned {
			n++
		}
	}
	return n
}

// DateRange returns every calendar day from start to end inclusive.
func DateRange(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// DaysBetween returns the number of calendar days from a to b, counted on
// the civil dates so daylight saving changes do not shorten a day.
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
