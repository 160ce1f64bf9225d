package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eldos/workmarket/internal/schema"
)

var ErrMalformedBody = errors.New("malformed request body")

// FieldError reports a write body that fails the declared shape of its kind.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

const (
	dateLayout       = "2006-01-02"
	legacyDateLayout = "01/02/2006"
)

type Options struct {
	// SortFields switches wire objects from declared field order to lexical
	// key order.
	SortFields bool
}

// Codec converts between stored records (dates as time.Time) and the wire
// JSON form (dates as ISO-8601 strings, 4-space indent, non-ASCII kept as is).
type Codec struct {
	sortFields bool
}

func New(opts Options) *Codec {
	return &Codec{sortFields: opts.SortFields}
}

// Decode reads a client write body: every non-generated field of the kind
// must be present and well typed. The first missing field in declared order
// is the one reported. Keys outside the schema are ignored.
func (c *Codec) Decode(kind schema.Kind, data []byte) (map[string]any, error) {
	return c.decode(kind, data, false)
}

// DecodeSeed is Decode for fixture rows, which may carry dates in the legacy
// MM/DD/YYYY form.
func (c *Codec) DecodeSeed(kind schema.Kind, data []byte) (map[string]any, error) {
	return c.decode(kind, data, true)
}

func (c *Codec) decode(kind schema.Kind, data []byte, legacyDates bool) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	record := make(map[string]any, len(kind.Fields))
	for _, f := range kind.DataFields() {
		raw, ok := obj[f.Name]
		if !ok || raw == nil {
			return nil, &FieldError{Field: f.Name, Reason: "is required"}
		}
		value, err := coerce(f, raw, legacyDates)
		if err != nil {
			return nil, err
		}
		record[f.Name] = value
	}
	return record, nil
}

func coerce(f schema.Field, raw any, legacyDates bool) (any, error) {
	switch f.Type {
	case schema.FieldInteger:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be an integer"}
		}
		n, err := num.Int64()
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "must be an integer"}
		}
		return n, nil
	case schema.FieldString:
		s, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a string"}
		}
		return s, nil
	case schema.FieldDate:
		s, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a date string"}
		}
		if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
			return t, nil
		}
		if legacyDates {
			if t, err := time.ParseInLocation(legacyDateLayout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return nil, &FieldError{Field: f.Name, Reason: "must be a YYYY-MM-DD date"}
	default:
		return nil, &FieldError{Field: f.Name, Reason: "has unsupported type"}
	}
}

// Encode renders one record as an indented wire object.
func (c *Codec) Encode(kind schema.Kind, record map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.writeObject(&buf, kind, record, 1); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeList renders records as a wire array, preserving the order the
// storage collaborator returned them in. An empty collection renders as [].
func (c *Codec) EncodeList(kind schema.Kind, records []map[string]any) ([]byte, error) {
	if len(records) == 0 {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, record := range records {
		buf.WriteString(indent(1))
		if err := c.writeObject(&buf, kind, record, 2); err != nil {
			return nil, err
		}
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (c *Codec) writeObject(buf *bytes.Buffer, kind schema.Kind, record map[string]any, depth int) error {
	fields := kind.Fields
	if c.sortFields {
		fields = append([]schema.Field(nil), fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	}

	buf.WriteString("{\n")
	for i, f := range fields {
		buf.WriteString(indent(depth))
		buf.WriteByte('"')
		buf.WriteString(f.Name)
		buf.WriteString("\": ")

		value, err := c.WireValue(f, record[f.Name])
		if err != nil {
			return err
		}
		if err := writeJSONValue(buf, value); err != nil {
			return fmt.Errorf("encode field %q: %w", f.Name, err)
		}
		if i < len(fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(indent(depth - 1))
	buf.WriteByte('}')
	return nil
}

// WireValue maps a stored scalar to its wire representation. Date fields
// normalize to YYYY-MM-DD regardless of how the storage driver surfaced them.
func (c *Codec) WireValue(f schema.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if f.Type != schema.FieldDate {
		return value, nil
	}
	switch v := value.(type) {
	case time.Time:
		return v.Format(dateLayout), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.Format(dateLayout), nil
	case string:
		for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05-07:00", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Format(dateLayout), nil
			}
		}
		return nil, fmt.Errorf("field %q: unrecognized stored date %q", f.Name, v)
	default:
		return nil, fmt.Errorf("field %q: unrecognized stored date type %T", f.Name, value)
	}
}

func writeJSONValue(buf *bytes.Buffer, value any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	// Encode terminates the value with a newline the surrounding layout
	// already provides.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func indent(depth int) string {
	const unit = "    "
	s := ""
	for i := 0; i < depth; i++ {
		s += unit
	}
	return s
}
