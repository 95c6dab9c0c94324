package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is the minimal view of a backing-store row the decoder needs:
// field access by physical column name. The second return value reports
// whether the column exists at all, which is distinct from a nil value.
type Row interface {
	Field(name string) (any, bool)
}

// timeLayouts are the accepted textual timestamp forms, tried in order.
// SQLite commonly stores RFC 3339, hand-written YAML tends to use bare
// dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeRow converts one backing-store row into a Record using the
// given field mapping. The decoder is deliberately tolerant about
// physical types because SQLite drivers and YAML produce different Go
// types for the same logical value.
func DecodeRow(row Row, fm FieldMap) (Record, error) {
	var rec Record

	id, err := requireInt(row, fm.ID)
	if err != nil {
		return Record{}, err
	}
	rec.ID = id

	from, err := requireTime(row, fm.ValidFrom)
	if err != nil {
		return Record{}, err
	}
	rec.ValidFrom = from

	until, ok, err := optionalTime(row, fm.ValidUntil)
	if err != nil {
		return Record{}, err
	}
	if ok {
		rec.ValidUntil = &until
	}

	succ, ok, err := optionalInt(row, fm.ReplacedBy)
	if err != nil {
		return Record{}, err
	}
	if ok {
		rec.ReplacedBy = &succ
	}

	if v, ok := row.Field(fm.Value); ok && v != nil {
		rec.Value = valueString(v)
	}

	if v, ok := row.Field(fm.IsDefault); ok && v != nil {
		b, err := asBool(fm.IsDefault, v)
		if err != nil {
			return Record{}, err
		}
		rec.IsDefault = b
	}

	return rec, nil
}

func requireInt(row Row, name string) (int64, error) {
	v, ok := row.Field(name)
	if !ok || v == nil {
		return 0, &DecodeError{Field: name, Value: v, Reason: "required field is missing"}
	}
	return asInt(name, v)
}

func optionalInt(row Row, name string) (int64, bool, error) {
	v, ok := row.Field(name)
	if !ok || v == nil {
		return 0, false, nil
	}
	n, err := asInt(name, v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func requireTime(row Row, name string) (time.Time, error) {
	v, ok := row.Field(name)
	if !ok || v == nil {
		return time.Time{}, &DecodeError{Field: name, Value: v, Reason: "required field is missing"}
	}
	return asTime(name, v)
}

func optionalTime(row Row, name string) (time.Time, bool, error) {
	v, ok := row.Field(name)
	if !ok || v == nil {
		return time.Time{}, false, nil
	}
	t, err := asTime(name, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func asInt(name string, v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, &DecodeError{Field: name, Value: v, Reason: "not an integer"}
		}
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, &DecodeError{Field: name, Value: v, Reason: "not an integer"}
		}
		return parsed, nil
	case []byte:
		return asInt(name, string(n))
	}
	return 0, &DecodeError{Field: name, Value: v, Reason: "unsupported integer type"}
}

func asTime(name string, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, &DecodeError{Field: name, Value: v, Reason: "nil timestamp"}
		}
		return *t, nil
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, &DecodeError{Field: name, Value: v, Reason: "unrecognized timestamp format"}
	case []byte:
		return asTime(name, string(t))
	}
	return time.Time{}, &DecodeError{Field: name, Value: v, Reason: "unsupported timestamp type"}
}

func asBool(name string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case int:
		return b != 0, nil
	case float64:
		return b != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "t", "yes", "1":
			return true, nil
		case "false", "f", "no", "0", "":
			return false, nil
		}
		return false, &DecodeError{Field: name, Value: v, Reason: "not a boolean"}
	case []byte:
		return asBool(name, string(b))
	}
	return false, &DecodeError{Field: name, Value: v, Reason: "unsupported boolean type"}
}

func valueString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
