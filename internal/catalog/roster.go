package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/khidmat-portal/khidmat/internal/portal"
)

// Week lists weekdays Monday first, the order the roster grid is drawn in.
var Week = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// RosterGrid is the weekly duty x day projection of duty roster rows.
type RosterGrid struct {
	Duties []string // first-seen order
	cells  map[string]map[time.Weekday][]string
}

// Cell returns the assignees for a duty on a weekday.
func (g RosterGrid) Cell(duty string, day time.Weekday) []string {
	return g.cells[duty][day]
}

// Len counts placed assignments.
func (g RosterGrid) Len() int {
	n := 0
	for _, byDay := range g.cells {
		for _, names := range byDay {
			n += len(names)
		}
	}
	return n
}

// WeeklyGrid groups roster rows by duty and weekday. Rows without a
// recognizable day are skipped.
func WeeklyGrid(rows []portal.Record) RosterGrid {
	grid := RosterGrid{cells: make(map[string]map[time.Weekday][]string)}
	for _, row := range rows {
		day, ok := rosterDay(row)
		if !ok {
			continue
		}
		duty := firstString(row, "duty_type.name", "duty.name", "duty_type", "duty")
		if duty == "" {
			duty = "Unassigned"
		}
		who := firstString(row, "karkun.name", "user.name", "name")
		if who == "" {
			who = "?"
		}
		byDay, ok := grid.cells[duty]
		if !ok {
			byDay = make(map[time.Weekday][]string, 7)
			grid.cells[duty] = byDay
			grid.Duties = append(grid.Duties, duty)
		}
		byDay[day] = append(byDay[day], who)
	}
	return grid
}

func rosterDay(row portal.Record) (time.Weekday, bool) {
	for _, field := range []string{"day", "day_of_week", "weekday"} {
		raw := strings.ToLower(row.String(field))
		if raw == "" {
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil {
			if n >= 0 && n <= 6 {
				return time.Weekday(n), true
			}
			if n == 7 {
				return time.Sunday, true
			}
			continue
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if raw == name || (len(raw) >= 3 && strings.HasPrefix(name, raw)) {
				return d, true
			}
		}
	}
	if t := portal.ParseTime(row.String("date")); !t.IsZero() {
		return t.Weekday(), true
	}
	return time.Sunday, false
}

func firstString(row portal.Record, fields ...string) string {
	for _, f := range fields {
		if s := strings.TrimSpace(row.String(f)); s != "" {
			return s
		}
	}
	return ""
}
