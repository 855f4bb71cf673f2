package persistence

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
)

// timestampLayout is fixed width so SQLite text timestamps sort correctly.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestampArg(d database.Driver, t time.Time) any {
	if d == database.DriverPostgres {
		return t.UTC()
	}
	return t.UTC().Format(timestampLayout)
}

func tagsArg(d database.Driver, tags []string) (any, error) {
	if tags == nil {
		tags = []string{}
	}
	if d == database.DriverPostgres {
		return pq.Array(tags), nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

// timestamp scans TIMESTAMPTZ values and SQLite text timestamps alike.
type timestamp struct {
	time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		ts.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

// tagList scans a Postgres text[] literal or a SQLite JSON array.
type tagList []string

func (l *tagList) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into tags", src)
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(s), &tags); err != nil {
			return fmt.Errorf("failed to decode tags: %w", err)
		}
		*l = normalizeTags(tags)
		return nil
	}

	var arr pq.StringArray
	if err := arr.Scan(s); err != nil {
		return err
	}
	*l = normalizeTags(arr)
	return nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return tags
}
