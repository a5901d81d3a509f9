package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so that text ordering in SQL matches
// chronological ordering. Values are written in local time without an offset.
const timeLayout = "2006-01-02T15:04:05.000000"

// parseLayouts accepts the current layout plus the shorter forms found in
// files written by earlier releases.
var parseLayouts = []string{
	timeLayout,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339Nano,
}

func formatTime(t time.Time) string {
	return t.In(time.Local).Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
