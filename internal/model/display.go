package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DisplayOffset is the shop's fixed wall-clock offset from UTC. It is a
// business rule, not a time zone: no DST, no location database.
const DisplayOffset = 3 * time.Hour

// DisplayLayout is the format of every timestamp sent to clients.
const DisplayLayout = "2006-01-02 15:04:05"

// Uncategorized is shown for items and tools without a category.
const Uncategorized = "Uncategorized"

// storedLayouts are the textual forms a DATETIME column may come back in.
var storedLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	DisplayLayout,
}

// Timestamp is a UTC instant that serializes in display form.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// Display renders the timestamp shifted by DisplayOffset.
func (t Timestamp) Display() string {
	return t.Time.UTC().Add(DisplayOffset).Format(DisplayLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Display())
}

// Value stores the instant in UTC.
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}

// Scan accepts the driver's time.Time or one of the stored textual layouts.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into Timestamp", src)
}

func (t *Timestamp) parse(s string) error {
	for _, layout := range storedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// Category is a nullable grouping label. Empty categories display as
// Uncategorized but are stored as they were written.
type Category struct {
	sql.NullString
}

// NewCategory builds a Category from an optional string.
func NewCategory(s *string) Category {
	if s == nil {
		return Category{}
	}
	return Category{sql.NullString{String: *s, Valid: true}}
}

// Label returns the display name of the category.
func (c Category) Label() string {
	if !c.Valid || c.String == "" {
		return Uncategorized
	}
	return c.String
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Label())
}
