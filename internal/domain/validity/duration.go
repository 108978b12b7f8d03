package validity

import (
	"fmt"
	"math"
	"time"
)

// Unit is the display unit of a validity duration.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

// Duration is a human-readable classification of a validity window. It is
// informational only.
type Duration struct {
	Unit  Unit `json:"unit"`
	Count int  `json:"count"`
}

func (d Duration) String() string {
	unit := string(d.Unit)
	if d.Count == 1 {
		unit = unit[:len(unit)-1]
	}
	return fmt.Sprintf("%d %s", d.Count, unit)
}

// Classify picks the largest unit that divides end - start exactly,
// comparing calendar dates only.
func Classify(start, end time.Time) Duration {
	s, e := truncateDay(start), truncateDay(end.In(start.Location()))
	if !e.After(s) {
		return Duration{Unit: UnitDays, Count: 0}
	}

	months := (e.Year()-s.Year())*12 + int(e.Month()-s.Month())
	if months > 0 && AddMonths(s, months).Equal(e) {
		if months%12 == 0 {
			return Duration{Unit: UnitYears, Count: months / 12}
		}
		return Duration{Unit: UnitMonths, Count: months}
	}

	days := int(math.Round(e.Sub(s).Hours() / 24))
	if days%7 == 0 {
		return Duration{Unit: UnitWeeks, Count: days / 7}
	}
	return Duration{Unit: UnitDays, Count: days}
}
