package itinerary

import (
	"fmt"
	"sort"
	"time"

	"goldennile/models"
)

// Slot-assignment constants. Reorder repacks the flat sequence into a
// repeating daily pattern of slotsPerDay two-hour slots starting at
// dayStartHour. Append keeps chaining same-day slots until the running
// end time reaches rolloverHour, then moves to the next date.
const (
	dayStartHour = 8
	slotHours    = 2
	slotsPerDay  = 4
	rolloverHour = 20

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// SlotTimes maps a flat position to its start/end times:
// start = 08 + 2*(i mod 4), end = start + 2h.
func SlotTimes(i int) (string, string) {
	startHour := dayStartHour + (i%slotsPerDay)*slotHours
	return fmt.Sprintf("%02d:00", startHour), fmt.Sprintf("%02d:00", startHour+slotHours)
}

// Append assigns the new activity its date and time slot from the current
// tail of the itinerary and returns the extended sequence. It always
// succeeds; any placeholder date/times on the new activity are overwritten.
func Append(list []models.Activity, a models.Activity) []models.Activity {
	if len(list) == 0 {
		a.Date = time.Now().Format(dateLayout)
		a.StartTime = "09:00"
		a.EndTime = "11:00"
		return append(list, a)
	}

	last := list[len(list)-1]
	if hourOf(last.EndTime) < rolloverHour {
		a.Date = last.Date
		a.StartTime = last.EndTime
		a.EndTime = addHours(last.EndTime, slotHours)
	} else {
		a.Date = addDays(last.Date, 1)
		a.StartTime = "08:00"
		a.EndTime = "10:00"
	}

	out := make([]models.Activity, len(list), len(list)+1)
	copy(out, list)
	return append(out, a)
}

// Remove drops the activity with the given id. Remaining activities keep
// their slots; deletion never re-slots a manual program.
func Remove(list []models.Activity, id string) []models.Activity {
	out := make([]models.Activity, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

// Reorder moves the activity at from to position to and repacks every
// slot. This is the manual-program variant: each activity also gets its
// own day, date(i) = tripStart + i days. Moving an item to its own
// position is a no-op and returns the input untouched.
func Reorder(list []models.Activity, from, to int, tripStart string) []models.Activity {
	if from == to {
		return list
	}
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return list
	}

	out := splice(list, from, to)
	for i := range out {
		out[i].StartTime, out[i].EndTime = SlotTimes(i)
		out[i].Date = addDays(tripStart, i)
	}
	return out
}

// ReorderDays is the generated-program variant: all days are flattened
// into one cross-day sequence, the move and time repacking happen on
// that sequence, and the result is regrouped preserving each day's
// original item count. Every regrouped activity takes the date of the
// day it lands in, so the date label always matches its group.
func ReorderDays(days []models.Day, from, to int) []models.Day {
	if from == to {
		return days
	}
	flat := Flatten(days)
	if from < 0 || from >= len(flat) || to < 0 || to >= len(flat) {
		return days
	}

	out := splice(flat, from, to)
	for i := range out {
		out[i].StartTime, out[i].EndTime = SlotTimes(i)
	}
	return regroup(days, out)
}

// Flatten materializes the day-grouped plan as one globally ordered
// sequence.
func Flatten(days []models.Day) []models.Activity {
	var flat []models.Activity
	for _, d := range days {
		flat = append(flat, d.Activities...)
	}
	return flat
}

// SortByDateTime re-sorts a manual program by (date, start time)
// ascending. Invoked after every direct field edit.
func SortByDateTime(list []models.Activity) []models.Activity {
	out := make([]models.Activity, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a well-formed 24h time of day.
func ValidTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil
}

// splice removes the element at from and reinserts it at to — a move,
// not a swap. Always returns a fresh slice.
func splice(list []models.Activity, from, to int) []models.Activity {
	out := make([]models.Activity, len(list))
	copy(out, list)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out, models.Activity{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}

// regroup redistributes the reordered flat sequence back into days,
// preserving each day's original activity count and stamping each
// activity with its destination day's date.
func regroup(days []models.Day, flat []models.Activity) []models.Day {
	out := make([]models.Day, len(days))
	idx := 0
	for i, d := range days {
		n := len(d.Activities)
		group := make([]models.Activity, n)
		copy(group, flat[idx:idx+n])
		for j := range group {
			group[j].Date = d.Date
		}
		out[i] = models.Day{Date: d.Date, Activities: group}
		idx += n
	}
	return out
}

func hourOf(t string) int {
	parsed, err := time.Parse(timeLayout, t)
	if err != nil {
		return 0
	}
	return parsed.Hour()
}

func addHours(t string, h int) string {
	parsed, err := time.Parse(timeLayout, t)
	if err != nil {
		return fmt.Sprintf("%02d:00", dayStartHour+h)
	}
	return parsed.Add(time.Duration(h) * time.Hour).Format(timeLayout)
}

func addDays(date string, n int) string {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		parsed = time.Now()
	}
	return parsed.AddDate(0, 0, n).Format(dateLayout)
}
