package itinerary

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"goldennile/models"
)

func makeActivity(id string) models.Activity {
	return models.Activity{ID: id, Name: "stop " + id, Kind: models.KindAttraction}
}

func TestAppendChainsSameDaySlots(t *testing.T) {
	var list []models.Activity
	for i := 0; i < 4; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	today := time.Now().Format(dateLayout)
	wantTimes := [][2]string{
		{"09:00", "11:00"},
		{"11:00", "13:00"},
		{"13:00", "15:00"},
		{"15:00", "17:00"},
	}
	for i, a := range list {
		if a.Date != today {
			t.Fatalf("activity %d: date %s, want %s", i, a.Date, today)
		}
		if a.StartTime != wantTimes[i][0] || a.EndTime != wantTimes[i][1] {
			t.Fatalf("activity %d: got %s-%s, want %s-%s", i, a.StartTime, a.EndTime, wantTimes[i][0], wantTimes[i][1])
		}
	}
}

func TestAppendInvariants(t *testing.T) {
	var list []models.Activity
	for i := 0; i < 15; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	for i, a := range list {
		if a.StartTime >= a.EndTime {
			t.Fatalf("activity %d: start %s not before end %s", i, a.StartTime, a.EndTime)
		}
		if i == 0 {
			continue
		}
		prev := list[i-1]
		if a.Date == prev.Date {
			// same-day slots chain with no gaps and no overlaps
			if a.StartTime != prev.EndTime {
				t.Fatalf("activity %d: start %s, want %s", i, a.StartTime, prev.EndTime)
			}
		} else {
			// rollover only fires once the prior end reaches the cutoff
			if hourOf(prev.EndTime) < rolloverHour {
				t.Fatalf("activity %d rolled over after end %s, cutoff is %d", i, prev.EndTime, rolloverHour)
			}
			if a.StartTime != "08:00" || a.EndTime != "10:00" {
				t.Fatalf("activity %d: rollover slot %s-%s, want 08:00-10:00", i, a.StartTime, a.EndTime)
			}
		}
	}
}

func TestAppendRolloverPoint(t *testing.T) {
	// From an empty program, slots run 09,11,13,15,17,19; the sixth ends
	// at 21:00, so the seventh append is the first on the next date.
	var list []models.Activity
	for i := 0; i < 7; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	first := list[0].Date
	for i := 0; i < 6; i++ {
		if list[i].Date != first {
			t.Fatalf("activity %d left day one early: %s", i, list[i].Date)
		}
	}
	if list[6].Date != addDays(first, 1) {
		t.Fatalf("seventh activity on %s, want %s", list[6].Date, addDays(first, 1))
	}
	if list[6].StartTime != "08:00" || list[6].EndTime != "10:00" {
		t.Fatalf("seventh activity slot %s-%s, want 08:00-10:00", list[6].StartTime, list[6].EndTime)
	}
}

func TestRemoveKeepsRemainingSlots(t *testing.T) {
	var list []models.Activity
	for i := 0; i < 4; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	before := make([]models.Activity, len(list))
	copy(before, list)

	got := Remove(list, "a1")
	if len(got) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(got))
	}
	// no re-slotting: survivors keep their user-visible times
	if !reflect.DeepEqual(got[0], before[0]) || !reflect.DeepEqual(got[1], before[2]) || !reflect.DeepEqual(got[2], before[3]) {
		t.Fatalf("remove re-slotted remaining activities: %+v", got)
	}
}

func TestReorderNoOp(t *testing.T) {
	var list []models.Activity
	for i := 0; i < 5; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	got := Reorder(list, 2, 2, "2026-09-01")
	if !reflect.DeepEqual(got, list) {
		t.Fatalf("no-op reorder changed the itinerary: %+v", got)
	}
}

func TestReorderRepacksSlots(t *testing.T) {
	tripStart := "2026-09-01"
	var list []models.Activity
	for i := 0; i < 9; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	cases := [][2]int{{0, 8}, {8, 0}, {3, 5}, {6, 1}}
	for _, c := range cases {
		got := Reorder(list, c[0], c[1], tripStart)
		if len(got) != len(list) {
			t.Fatalf("reorder(%d,%d) changed membership: %d items", c[0], c[1], len(got))
		}
		for i, a := range got {
			wantStart, wantEnd := SlotTimes(i)
			if a.StartTime != wantStart || a.EndTime != wantEnd {
				t.Fatalf("reorder(%d,%d) position %d: %s-%s, want %s-%s", c[0], c[1], i, a.StartTime, a.EndTime, wantStart, wantEnd)
			}
			if a.Date != addDays(tripStart, i) {
				t.Fatalf("reorder(%d,%d) position %d: date %s, want %s", c[0], c[1], i, a.Date, addDays(tripStart, i))
			}
		}
	}
}

func TestReorderMoveSemantics(t *testing.T) {
	tripStart := "2026-09-01"
	var list []models.Activity
	for i := 0; i < 4; i++ {
		list = Append(list, makeActivity(fmt.Sprintf("a%d", i)))
	}

	got := Reorder(list, 0, 2, tripStart)
	wantOrder := []string{"a1", "a2", "a0", "a3"}
	for i, a := range got {
		if a.ID != wantOrder[i] {
			t.Fatalf("position %d: got %s, want %s", i, a.ID, wantOrder[i])
		}
	}
}

func TestReorderDaysPreservesGrouping(t *testing.T) {
	days := []models.Day{
		{Date: "2026-09-01"},
		{Date: "2026-09-02"},
		{Date: "2026-09-03"},
	}
	counts := []int{3, 2, 4}
	n := 0
	for i := range days {
		for j := 0; j < counts[i]; j++ {
			start, end := SlotTimes(j)
			days[i].Activities = append(days[i].Activities, models.Activity{
				ID:        fmt.Sprintf("g%d", n),
				Date:      days[i].Date,
				StartTime: start,
				EndTime:   end,
			})
			n++
		}
	}

	// move the first activity of day one past the day-two boundary
	got := ReorderDays(days, 0, 4)

	for i, d := range got {
		if len(d.Activities) != counts[i] {
			t.Fatalf("day %d: %d activities, want %d", i, len(d.Activities), counts[i])
		}
		for _, a := range d.Activities {
			if a.Date != d.Date {
				t.Fatalf("activity %s carries date %s inside day %s", a.ID, a.Date, d.Date)
			}
		}
	}

	flat := Flatten(got)
	if len(flat) != n {
		t.Fatalf("membership changed: %d activities, want %d", len(flat), n)
	}
	for i, a := range flat {
		wantStart, wantEnd := SlotTimes(i)
		if a.StartTime != wantStart || a.EndTime != wantEnd {
			t.Fatalf("flat position %d: %s-%s, want %s-%s", i, a.StartTime, a.EndTime, wantStart, wantEnd)
		}
	}
	if flat[4].ID != "g0" {
		t.Fatalf("moved activity at flat position 4 is %s, want g0", flat[4].ID)
	}
}

func TestReorderDaysNoOp(t *testing.T) {
	days := []models.Day{
		{Date: "2026-09-01", Activities: []models.Activity{makeActivity("g0"), makeActivity("g1")}},
	}
	got := ReorderDays(days, 1, 1)
	if !reflect.DeepEqual(got, days) {
		t.Fatalf("no-op reorder changed the plan: %+v", got)
	}
}

func TestSortByDateTime(t *testing.T) {
	list := []models.Activity{
		{ID: "c", Date: "2026-09-02", StartTime: "08:00", EndTime: "10:00"},
		{ID: "a", Date: "2026-09-01", StartTime: "12:00", EndTime: "14:00"},
		{ID: "b", Date: "2026-09-01", StartTime: "09:00", EndTime: "11:00"},
	}

	got := SortByDateTime(list)
	wantOrder := []string{"b", "a", "c"}
	for i, a := range got {
		if a.ID != wantOrder[i] {
			t.Fatalf("position %d: got %s, want %s", i, a.ID, wantOrder[i])
		}
	}
}
