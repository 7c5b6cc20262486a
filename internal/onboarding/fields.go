package onboarding

import (
	"time"

	"github.com/Afrawles/onboardtracker/internal/asana"
)

const dateLayout = "2006-01-02"

func findField(fields []asana.CustomField, gid string) *asana.CustomField {
	if gid == "" {
		return nil
	}
	for i := range fields {
		if fields[i].GID == gid {
			return &fields[i]
		}
	}
	return nil
}

// FieldValue resolves a custom field to a string, preferring the text value,
// then the enum option name, the date and finally the display value.
func FieldValue(fields []asana.CustomField, gid string) *string {
	f := findField(fields, gid)
	if f == nil {
		return nil
	}
	switch {
	case f.TextValue != nil:
		return f.TextValue
	case f.EnumValue != nil && f.EnumValue.Name != "":
		return strPtr(f.EnumValue.Name)
	case f.DateValue != nil && f.DateValue.Date != "":
		return strPtr(f.DateValue.Date)
	case f.DisplayValue != nil:
		return f.DisplayValue
	}
	return nil
}

// DateFieldValue resolves a date custom field. Text or display values are
// accepted when they hold a YYYY-MM-DD date.
func DateFieldValue(fields []asana.CustomField, gid string) *asana.DateValue {
	f := findField(fields, gid)
	if f == nil {
		return nil
	}
	if f.DateValue != nil && f.DateValue.Date != "" {
		return f.DateValue
	}
	for _, s := range []*string{f.TextValue, f.DisplayValue} {
		if s == nil {
			continue
		}
		if _, err := time.Parse(dateLayout, *s); err == nil {
			return &asana.DateValue{Date: *s}
		}
	}
	return nil
}
