package core

// validator.go holds the business rules applied to observation rows.
//
// Order matters: date checks may drop the row and stop there, altitude and
// depth fixes assume the earlier truncation already happened. Fixes never
// drop a row; they correct or null the offending values.

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxAltitude is the highest altitude accepted, in meters (Mont Blanc).
const MaxAltitude = 4696

// optionalFields are nulled when empty: their database types (uuid, integer,
// date, json) have no empty value.
var optionalFields = []string{
	"unique_id_sinp", "unique_id_sinp_grp", "code_dataset",
	"cd_nom", "cd_hab", "count_min", "count_max",
	"altitude_min", "altitude_max", "depth_min", "depth_max", "precision",
	"validation_date", "determination_date", "meta_create_date", "meta_update_date",
	"additional_data",
}

// Validator applies the observation rules.
type Validator struct {
	rc      *recorder
	addUUID bool
	now     func() time.Time
}

// EnsureObservationID writes a random UUID when the unique_id_sinp value
// is missing or not a valid UUID. Files without the column are left alone
// since the output header would not carry it.
func (v *Validator) EnsureObservationID(o Observation) {
	if !v.addUUID || !o.Has(ColUniqueID) {
		return
	}
	if id, ok := o.Get(ColUniqueID); ok {
		if _, err := uuid.Parse(id); err == nil {
			return
		}
	}
	o.Set(ColUniqueID, uuid.NewString())
}

// NullifyEmptyOptionalFields replaces empty optional values by the sentinel.
func (v *Validator) NullifyEmptyOptionalFields(o Observation) {
	for _, name := range optionalFields {
		if val, ok := o.Get(name); ok && val == "" {
			o.Set(name, v.rc.null)
		}
	}
}

// isDeleteAction reports whether a meta_last_action marker flags a deletion.
func isDeleteAction(v string) bool {
	return v == "D" || strings.EqualFold(v, "delete")
}

// CheckDates runs the date rules in order and stops at the first failure.
// It returns false when the row must be dropped.
func (v *Validator) CheckDates(o Observation) bool {
	if isDeleteAction(o.LastAction()) {
		return true
	}
	return v.requireDates(o) &&
		v.dateOrdering(o) &&
		v.noFutureDate(o, ColDateMin, DateMinInFuture) &&
		v.noFutureDate(o, ColDateMax, DateMaxInFuture)
}

func (v *Validator) requireDates(o Observation) bool {
	dateMin, okMin, dateMax, okMax := o.Dates()
	if okMin && okMax && !v.rc.emptyOrNull(dateMin) && !v.rc.emptyOrNull(dateMax) {
		return true
	}
	ref := v.rc.warn(o, "line removed, mandatory dates missing",
		"date_min", dateMin, "date_max", dateMax)
	v.rc.report.Drop(DateMissing, ref)
	return false
}

// dateOrdering relies on dates being written in a sortable form.
func (v *Validator) dateOrdering(o Observation) bool {
	dateMin, _, dateMax, _ := o.Dates()
	if dateMax >= dateMin {
		return true
	}
	ref := v.rc.warn(o, "line removed, date max before date min",
		"date_min", dateMin, "date_max", dateMax)
	v.rc.report.Drop(DateMaxBeforeMin, ref)
	return false
}

func (v *Validator) noFutureDate(o Observation, col string, c Category) bool {
	raw, _ := o.Get(col)
	d, ok := ParseDate(raw)
	if !ok {
		ref := v.rc.warn(o, "line removed, date not parsable", "column", col, "value", raw)
		v.rc.report.Drop(DateInvalid, ref)
		return false
	}
	if !calendarDay(d).After(calendarDay(v.now())) {
		return true
	}
	ref := v.rc.warn(o, "line removed, date in the future", "column", col, "value", raw)
	v.rc.report.Drop(c, ref)
	return false
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var timeLayouts = []string{
	"",
	" 15:04",
	" 15:04:05",
	" 15:04:05.999999999",
	" 15:04:05Z07:00",
	" 15:04:05.999999999Z07:00",
	" 15:04:05-07",
	" 15:04:05.999999999-07",
	"T15:04",
	"T15:04:05",
	"T15:04:05.999999999",
	"T15:04:05Z07:00",
	"T15:04:05.999999999Z07:00",
}

// dateLayout infers the date part layout from the position of its separators.
func dateLayout(s string) string {
	switch {
	case len(s) >= 10 && s[4] == '/':
		return "2006/01/02"
	case len(s) >= 10 && s[2] == '/':
		return "02/01/2006"
	case len(s) >= 10 && s[2] == '-':
		return "02-01-2006"
	}
	return "2006-01-02"
}

// ParseDate parses a date or timestamp as found in import files.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	layout := dateLayout(s)
	for _, tl := range timeLayouts {
		if t, err := time.Parse(layout+tl, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FixAltitudes applies the altitude and depth corrections in order.
func (v *Validator) FixAltitudes(o Observation) {
	v.truncate(o, ColAltitudeMin, AltitudeMinFixed)
	v.truncate(o, ColAltitudeMax, AltitudeMaxFixed)
	v.fixInvertedAltitudes(o)
	v.fixNegativeAltitudes(o)
	v.validateAltitudeRange(o)
	v.truncate(o, ColDepthMin, DepthMinFixed)
	v.truncate(o, ColDepthMax, DepthMaxFixed)
}

// truncate keeps the integer part of a decimal value.
func (v *Validator) truncate(o Observation, col string, c Category) {
	val, ok := v.rc.present(o, col)
	if !ok {
		return
	}
	i := strings.IndexAny(val, ",.")
	if i < 0 {
		return
	}
	fixed := val[:i]
	ref := v.rc.warn(o, "decimal value truncated", "column", col, "value", val, "fixed", fixed)
	v.rc.report.Add(c, ref)
	o.Set(col, fixed)
}

// altitudes returns both altitudes when present. ok is false when either
// is absent; parsed is false when either is not an integer.
func (v *Validator) altitudes(o Observation) (altMin, altMax int, ok, parsed bool) {
	rawMin, okMin := v.rc.present(o, ColAltitudeMin)
	rawMax, okMax := v.rc.present(o, ColAltitudeMax)
	if !okMin || !okMax {
		return 0, 0, false, false
	}
	altMin, errMin := strconv.Atoi(strings.TrimSpace(rawMin))
	altMax, errMax := strconv.Atoi(strings.TrimSpace(rawMax))
	return altMin, altMax, true, errMin == nil && errMax == nil
}

// HasAltitudes reports whether both altitudes carry data.
func (v *Validator) HasAltitudes(o Observation) bool {
	_, _, ok, _ := v.altitudes(o)
	return ok
}

func (v *Validator) fixInvertedAltitudes(o Observation) {
	altMin, altMax, ok, parsed := v.altitudes(o)
	if !ok || !parsed || altMax >= altMin {
		return
	}
	ref := v.rc.warn(o, "altitudes inverted", "altitude_min", altMin, "altitude_max", altMax)
	v.rc.report.Add(AltitudeInverted, ref)
	o.Set(ColAltitudeMin, strconv.Itoa(altMax))
	o.Set(ColAltitudeMax, strconv.Itoa(altMin))
}

// fixNegativeAltitudes moves a pair of negative altitudes to the depths.
// Existing depth values are overwritten.
func (v *Validator) fixNegativeAltitudes(o Observation) {
	altMin, altMax, ok, parsed := v.altitudes(o)
	if !ok || !parsed || altMin >= 0 || altMax >= 0 {
		return
	}
	ref := v.rc.warn(o, "altitudes negative, moved to depths", "altitude_min", altMin, "altitude_max", altMax)
	if dMin, okMin := v.rc.present(o, ColDepthMin); okMin {
		v.rc.logger.Warn("depth overwritten", "ref", ref, "column", ColDepthMin, "value", dMin)
	}
	if dMax, okMax := v.rc.present(o, ColDepthMax); okMax {
		v.rc.logger.Warn("depth overwritten", "ref", ref, "column", ColDepthMax, "value", dMax)
	}
	v.rc.report.Add(AltitudeNegative, ref)
	o.Set(ColDepthMin, strconv.Itoa(max(altMin, altMax)))
	o.Set(ColDepthMax, strconv.Itoa(min(altMin, altMax)))
	o.Set(ColAltitudeMin, v.rc.null)
	o.Set(ColAltitudeMax, v.rc.null)
}

// validateAltitudeRange nulls both altitudes unless they are absent or form
// an ordered pair within [0, MaxAltitude].
func (v *Validator) validateAltitudeRange(o Observation) {
	altMin, altMax, ok, parsed := v.altitudes(o)
	if !ok {
		return
	}
	if parsed && altMax >= altMin && altMin >= 0 && altMax <= MaxAltitude {
		return
	}
	rawMin, _ := o.Get(ColAltitudeMin)
	rawMax, _ := o.Get(ColAltitudeMax)
	ref := v.rc.warn(o, "altitude error, set to null", "altitude_min", rawMin, "altitude_max", rawMax)
	v.rc.report.Add(AltitudeErrors, ref)
	o.Set(ColAltitudeMin, v.rc.null)
	o.Set(ColAltitudeMax, v.rc.null)
}
