package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateTimeLayout = "2006-01-02T15:04:05"

// DateTime is a second-precision UTC timestamp rendered in JSON without a
// zone suffix ("2006-01-02T15:04:05"), the form existing API consumers
// already parse.
type DateTime struct {
	time.Time
}

// NewDateTime normalizes t to UTC at second precision.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t.UTC().Truncate(time.Second)}
}

func (t DateTime) String() string { return t.UTC().Format(dateTimeLayout) }

func (t DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *DateTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	parsed, err := time.Parse(dateTimeLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*t = DateTime{parsed.UTC()}
	return nil
}

func (t DateTime) Value() (driver.Value, error) {
	return t.Time, nil
}

func (t *DateTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DateTime", src)
	}
}

func (t *DateTime) scanString(s string) error {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05-07:00", dateTimeLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q into DateTime", s)
}

// GormDataType makes gorm migrate DateTime fields as datetime columns.
func (DateTime) GormDataType() string { return "datetime" }
