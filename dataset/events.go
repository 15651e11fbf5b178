package dataset

import "time"

// EventKind classifies pandemic timeline events for figure styling.
type EventKind int

const (
	StateOfEmergency EventKind = iota
	Olympics
	VaccinationStart
	NewVariant
)

// Event marks a dated public-health event used to annotate figures.
type Event struct {
	Kind  EventKind
	Label string
	Date  time.Time
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Events returns the Tokyo pandemic timeline used to annotate the original
// signal figure, ordered by date.
func Events() []Event {
	return []Event{
		{StateOfEmergency, "1st state of emergency", day(2020, time.April, 7)},
		{NewVariant, "Alpha variant reported", day(2021, time.January, 1)},
		{StateOfEmergency, "2nd state of emergency", day(2021, time.January, 7)},
		{VaccinationStart, "Vaccination start", day(2021, time.February, 17)},
		{StateOfEmergency, "3rd state of emergency", day(2021, time.April, 25)},
		{NewVariant, "Delta variant reported", day(2021, time.May, 1)},
		{Olympics, "Olympics opening", day(2021, time.July, 23)},
		{Olympics, "Olympics closing", day(2021, time.August, 8)},
	}
}

// EventsBetween filters the timeline to events inside [from, to].
func EventsBetween(from, to time.Time) []Event {
	var out []Event

	for _, e := range Events() {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}

		out = append(out, e)
	}

	return out
}
