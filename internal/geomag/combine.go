package geomag

import (
	"fmt"
	"io"
)

// CombinedField is a coefficient set resolved for one target date. Its
// MaxDegree is the larger degree of the two inputs.
type CombinedField struct {
	CoefficientSet
	Date float64
}

// Extrapolate advances base from its epoch to date along the secular
// variation sv. Slots beyond the smaller degree come from base unscaled, or
// from sv scaled by the elapsed time.
func Extrapolate(base, sv CoefficientSet, epoch, date float64) CombinedField {
	return combine(base, sv, date-epoch, date, func(a, b, factor float64) float64 {
		return a + factor*b
	})
}

// Interpolate blends a (valid from dateA) towards b (valid from dateB). Slots
// beyond the smaller degree come from a unscaled, or from b scaled by the
// blend factor.
func Interpolate(a, b CoefficientSet, dateA, dateB, date float64) CombinedField {
	var factor float64
	if dateB != dateA {
		factor = (date - dateA) / (dateB - dateA)
	}
	return combine(a, b, factor, date, func(a, b, factor float64) float64 {
		return a + factor*(b-a)
	})
}

func combine(a, b CoefficientSet, factor, date float64, overlap func(a, b, factor float64) float64) CombinedField {
	nmax := max(a.MaxDegree, b.MaxDegree)
	out := CombinedField{CoefficientSet: NewCoefficientSet(nmax), Date: date}

	k := SlotCount(min(a.MaxDegree, b.MaxDegree))
	for i := 0; i < k; i++ {
		out.Values[i] = overlap(a.Values[i], b.Values[i], factor)
	}
	if a.MaxDegree > b.MaxDegree {
		copy(out.Values[k:], a.Values[k:])
	} else {
		for i := k; i < len(out.Values); i++ {
			out.Values[i] = factor * b.Values[i]
		}
	}
	return out
}

// Combine selects the model for date from cat and returns it together with
// the fields combined for date and date+1.
func Combine(r io.ReadSeeker, cat Catalog, date float64) (ModelDescriptor, CombinedField, CombinedField, error) {
	if len(cat.Models) == 0 {
		return ModelDescriptor{}, CombinedField{}, CombinedField{}, fmt.Errorf("%w: empty catalog", ErrCorruptRecord)
	}
	i := cat.Select(date)
	model := cat.Models[i]

	primary, err := ReadCoefficients(r, model.Offset, model.MaxDegree, PrimaryColumns)
	if err != nil {
		return model, CombinedField{}, CombinedField{}, fmt.Errorf("read %s main field: %w", model.Name, err)
	}

	if model.Extrapolated() {
		sv, err := ReadCoefficients(r, model.Offset, model.SVMaxDegree, SecondaryColumns)
		if err != nil {
			return model, CombinedField{}, CombinedField{}, fmt.Errorf("read %s secular variation: %w", model.Name, err)
		}
		return model,
			Extrapolate(primary, sv, model.Epoch, date),
			Extrapolate(primary, sv, model.Epoch, date+1),
			nil
	}

	if i+1 >= len(cat.Models) {
		return model, CombinedField{}, CombinedField{}, fmt.Errorf("%w: %s has no secular variation and no successor model", ErrCorruptRecord, model.Name)
	}
	succ := cat.Models[i+1]
	next, err := ReadCoefficients(r, succ.Offset, succ.MaxDegree, PrimaryColumns)
	if err != nil {
		return model, CombinedField{}, CombinedField{}, fmt.Errorf("read %s main field: %w", succ.Name, err)
	}
	return model,
		Interpolate(primary, next, model.MinYear, succ.MinYear, date),
		Interpolate(primary, next, model.MinYear, succ.MinYear, date+1),
		nil
}
