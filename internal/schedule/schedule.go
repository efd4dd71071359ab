package schedule

import (
	"time"

	"github.com/atelierhq/atelier-admin/pkg/models"
)

// Kind identifies which of an order's scheduled dates matched a day.
type Kind int

const (
	KindFirstFitting Kind = iota
	KindSecondFitting
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindFirstFitting:
		return "first_fitting"
	case KindSecondFitting:
		return "second_fitting"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Filter restricts appointment matching to one kind, or matches all.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterFirst      Filter = "first"
	FilterSecond     Filter = "second"
	FilterCollection Filter = "collection"
)

// ParseFilter maps a query-string value onto a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterFirst, FilterSecond, FilterCollection:
		return Filter(s)
	default:
		return FilterAll
	}
}

// Appointment pairs an order with the kind of date that matched.
type Appointment struct {
	Order models.Order `json:"order"`
	Kind  string       `json:"kind"`
}

// DayCell is one cell of a month or week grid. Blank cells pad the first
// week of a month grid out to its Sunday start; they carry a zero Date and
// no appointments.
type DayCell struct {
	Blank        bool          `json:"blank"`
	Date         time.Time     `json:"date,omitempty"`
	Day          int           `json:"day,omitempty"`
	Appointments []Appointment `json:"appointments,omitempty"`
}

// sameDay reports calendar-day equality. Time of day is irrelevant to
// fitting and collection scheduling.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// matchKind returns the highest-priority kind of the order's dates that
// falls on day, or false if none do. When two of an order's dates land on
// the same day the order still yields a single appointment; first fitting
// wins over second fitting, which wins over collection.
func matchKind(day time.Time, o models.Order) (Kind, bool) {
	if o.FirstFitting != nil && sameDay(day, *o.FirstFitting) {
		return KindFirstFitting, true
	}
	if o.SecondFitting != nil && sameDay(day, *o.SecondFitting) {
		return KindSecondFitting, true
	}
	if o.CollectionDate != nil && sameDay(day, *o.CollectionDate) {
		return KindCollection, true
	}
	return 0, false
}

func (f Filter) allows(k Kind) bool {
	switch f {
	case FilterFirst:
		return k == KindFirstFitting
	case FilterSecond:
		return k == KindSecondFitting
	case FilterCollection:
		return k == KindCollection
	default:
		return true
	}
}

// OrdersForDate returns the orders with an appointment on day, each tagged
// with the kind that matched. Output preserves input order.
func OrdersForDate(day time.Time, orders []models.Order, filter Filter) []Appointment {
	var matches []Appointment
	for _, o := range orders {
		kind, ok := matchKind(day, o)
		if !ok || !filter.allows(kind) {
			continue
		}
		matches = append(matches, Appointment{Order: o, Kind: kind.String()})
	}
	return matches
}

// BuildMonthGrid lays out one calendar month as a Sunday-start grid:
// leading blank cells up to the weekday of the 1st, then one cell per day
// of the month annotated with its appointments. month is 1-based January.
func BuildMonthGrid(year int, month time.Month, orders []models.Order) []DayCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cells := make([]DayCell, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, DayCell{Blank: true})
	}
	for d := 1; d <= daysInMonth; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.Local)
		cells = append(cells, DayCell{
			Date:         day,
			Day:          d,
			Appointments: OrdersForDate(day, orders, FilterAll),
		})
	}
	return cells
}

// BuildWeekGrid returns the seven days of the Sunday-start week containing
// anchor, each annotated with its appointments.
func BuildWeekGrid(anchor time.Time, orders []models.Order) []DayCell {
	y, m, d := anchor.Date()
	sunday := time.Date(y, m, d, 0, 0, 0, 0, anchor.Location()).
		AddDate(0, 0, -int(anchor.Weekday()))

	cells := make([]DayCell, 0, 7)
	for i := 0; i < 7; i++ {
		day := sunday.AddDate(0, 0, i)
		cells = append(cells, DayCell{
			Date:         day,
			Day:          day.Day(),
			Appointments: OrdersForDate(day, orders, FilterAll),
		})
	}
	return cells
}

// IsPastDate reports whether day is strictly before now at day granularity,
// both truncated in now's location. Used to flag days that can no longer
// take a new appointment.
func IsPastDate(day, now time.Time) bool {
	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	dy, dm, dd := day.Date()
	target := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())
	return target.Before(today)
}
