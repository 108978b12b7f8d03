// Package validity resolves the validity window of a budget.
package validity

import (
	"fmt"
	"time"

	"presupuesto_xpto/internal/domain/entities"
)

// Resolver computes validity periods. Now supplies the default start date;
// a nil Now uses time.Now.
type Resolver struct {
	Now func() time.Time
}

func NewResolver(now func() time.Time) Resolver {
	return Resolver{Now: now}
}

func (r Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Resolve turns period input into a concrete period.
//
//   - Start defaults to today.
//   - An empty preset means MANUAL when an end is given, 1M otherwise.
//   - Non-MANUAL presets always recompute End from Start; a supplied End is
//     ignored.
//   - MANUAL keeps the caller's End, which must not precede Start.
func (r Resolver) Resolve(in entities.PeriodInput) (entities.ValidityPeriod, error) {
	start := truncateDay(r.now())
	if in.Start != nil {
		start = *in.Start
	}

	preset := in.Preset
	if preset == "" {
		if in.End != nil {
			preset = entities.PresetManual
		} else {
			preset = entities.PresetOneMonth
		}
	}
	if !preset.Valid() {
		return entities.ValidityPeriod{}, fmt.Errorf("%w: unknown preset %q", entities.ErrInvalidPeriod, preset)
	}

	if preset == entities.PresetManual {
		if in.End == nil {
			return entities.ValidityPeriod{}, fmt.Errorf("%w: manual period requires an end date", entities.ErrInvalidPeriod)
		}
		if in.End.Before(start) {
			return entities.ValidityPeriod{}, fmt.Errorf("%w: end %s before start %s", entities.ErrInvalidPeriod,
				in.End.Format(time.DateOnly), start.Format(time.DateOnly))
		}
		return entities.ValidityPeriod{Start: start, End: *in.End, Preset: preset}, nil
	}

	n, _ := preset.Months()
	return entities.ValidityPeriod{Start: start, End: AddMonths(start, n), Preset: preset}, nil
}

// WithStart moves the start date. End follows unless the period is MANUAL.
func WithStart(p entities.ValidityPeriod, start time.Time) entities.ValidityPeriod {
	p.Start = start
	if n, ok := p.Preset.Months(); ok {
		p.End = AddMonths(start, n)
	}
	return p
}

// WithPreset switches the preset. Switching to MANUAL keeps the current end;
// any other preset recomputes it.
func WithPreset(p entities.ValidityPeriod, preset entities.Preset) (entities.ValidityPeriod, error) {
	if !preset.Valid() {
		return p, fmt.Errorf("%w: unknown preset %q", entities.ErrInvalidPeriod, preset)
	}
	p.Preset = preset
	if n, ok := preset.Months(); ok {
		p.End = AddMonths(p.Start, n)
	}
	return p, nil
}

// WithEnd sets the end date explicitly, which makes the period MANUAL.
func WithEnd(p entities.ValidityPeriod, end time.Time) (entities.ValidityPeriod, error) {
	if end.Before(p.Start) {
		return p, fmt.Errorf("%w: end before start", entities.ErrInvalidPeriod)
	}
	p.End = end
	p.Preset = entities.PresetManual
	return p, nil
}
