package schema

import (
	"strconv"
	"strings"
	"time"
)

// Excel's serial-date epoch (the 1900 system, with its leap-year quirk
// already folded in).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"02-Jan-2006",
	"2006/01/02",
}

// ParseDate turns a raw cell value into a UTC timestamp. Numbers are read as
// Excel serial dates. Anything unparsable yields the zero time rather than
// an error; downstream analyses exclude such records.
func ParseDate(v any) time.Time {
	switch x := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return x.UTC()
	case float64:
		return excelSerial(x)
	case int:
		return excelSerial(float64(x))
	case int64:
		return excelSerial(float64(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t
			}
		}
		// Some exports render serials as text.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return excelSerial(f)
		}
	}
	return time.Time{}
}

func excelSerial(days float64) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return excelEpoch.Add(time.Duration(days * 86400 * float64(time.Second)))
}
