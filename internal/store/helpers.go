package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sipsociety/sipcms/internal/richtext"
)

func parseDBTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", v)
}

func timeToDBString(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// findingsToDB stores an empty report as NULL so clean rows stay compact.
func findingsToDB(f richtext.Findings) (any, error) {
	if f.Empty() {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode findings: %w", err)
	}
	return string(data), nil
}

func findingsFromDB(v string) richtext.Findings {
	var f richtext.Findings
	if strings.TrimSpace(v) == "" {
		return f
	}
	_ = json.Unmarshal([]byte(v), &f)
	return f
}
