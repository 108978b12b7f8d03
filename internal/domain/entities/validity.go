package entities

import (
	"strings"
	"time"
)

// Preset controls whether the validity end date follows the start date.
type Preset string

const (
	PresetManual      Preset = "MANUAL"
	PresetOneMonth    Preset = "1M"
	PresetThreeMonths Preset = "3M"
	PresetSixMonths   Preset = "6M"
	PresetOneYear     Preset = "1Y"
)

// Months returns the month offset for the preset. ok is false for MANUAL
// and unknown presets.
func (p Preset) Months() (n int, ok bool) {
	switch p {
	case PresetOneMonth:
		return 1, true
	case PresetThreeMonths:
		return 3, true
	case PresetSixMonths:
		return 6, true
	case PresetOneYear:
		return 12, true
	}
	return 0, false
}

func (p Preset) Valid() bool {
	if p == PresetManual {
		return true
	}
	_, ok := p.Months()
	return ok
}

// ParsePreset normalises casing; the empty string stays empty.
func ParsePreset(s string) Preset {
	return Preset(strings.ToUpper(strings.TrimSpace(s)))
}

// ValidityPeriod is the date range during which a budget's pricing holds.
type ValidityPeriod struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Preset Preset    `json:"preset"`
}

// PeriodInput carries the caller's period fields. Nil Start means "now".
type PeriodInput struct {
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
	Preset Preset     `json:"preset,omitempty"`
}

// Input turns a resolved period back into resolver input. Only MANUAL
// periods carry their end date.
func (p ValidityPeriod) Input() PeriodInput {
	start := p.Start
	in := PeriodInput{Start: &start, Preset: p.Preset}
	if p.Preset == PresetManual {
		end := p.End
		in.End = &end
	}
	return in
}
