// Package calendar lays out month grids for the family calendar and
// buckets a baby's scheduled records into their days.
package calendar

import (
	"time"

	"babymind/internal/models"
)

const (
	// Weeks is the fixed number of rows in a month grid
	Weeks = 6
	days  = 7
)

// Day is one cell of a month grid
type Day struct {
	Date     time.Time       `json:"date"`
	InMonth  bool            `json:"in_month"`
	IsToday  bool            `json:"is_today"`
	Entities []models.Entity `json:"entities,omitempty"`
}

// Grid is a 6x7 month layout padded with days of the adjacent months
type Grid struct {
	Year  int              `json:"year"`
	Month time.Month       `json:"month"`
	Weeks [Weeks][days]Day `json:"weeks"`
}

// MonthGrid builds the grid for a month. Rows start on firstWeekday and the
// first row always contains the 1st of the month. Dates are midnight in loc.
func MonthGrid(year int, month time.Month, firstWeekday time.Weekday, loc *time.Location) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) - int(firstWeekday) + days) % days
	start := first.AddDate(0, 0, -offset)

	g := Grid{Year: year, Month: month}
	for w := 0; w < Weeks; w++ {
		for d := 0; d < days; d++ {
			date := start.AddDate(0, 0, w*days+d)
			g.Weeks[w][d] = Day{
				Date:    date,
				InMonth: date.Month() == month,
			}
		}
	}
	return g
}

// MarkToday flags the cell matching now
func (g *Grid) MarkToday(now time.Time) {
	for w := range g.Weeks {
		for d := range g.Weeks[w] {
			cell := &g.Weeks[w][d]
			cell.IsToday = models.SameDay(cell.Date, now)
		}
	}
}

// Place puts each entity into the cell of its scheduled day. Entities
// outside the grid are ignored.
func (g *Grid) Place(entities []models.Entity) {
	start := g.Weeks[0][0].Date
	for _, e := range entities {
		at := e.ScheduledAt.In(start.Location())
		idx := daysBetween(start, at)
		if idx < 0 || idx >= Weeks*days {
			continue
		}
		cell := &g.Weeks[idx/days][idx%days]
		cell.Entities = append(cell.Entities, e)
	}
}

// Range returns the first and last dates shown in the grid
func (g *Grid) Range() (time.Time, time.Time) {
	return g.Weeks[0][0].Date, g.Weeks[Weeks-1][days-1].Date
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
