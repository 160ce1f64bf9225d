package schema

import (
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown entity kind")

type FieldType string

const (
	FieldInteger FieldType = "integer"
	FieldString  FieldType = "string"
	FieldDate    FieldType = "date"
)

// Field describes one column of an entity kind. References names the kind a
// foreign-key field must point to; empty for plain fields.
type Field struct {
	Name       string
	Type       FieldType
	PrimaryKey bool
	References string
}

type Kind struct {
	Name   string // path segment, e.g. "users"
	Table  string // relational table name
	Fields []Field
}

// DataFields returns the declared fields minus the generated primary key,
// in declaration order. These are the fields a client must supply on write.
func (k Kind) DataFields() []Field {
	fields := make([]Field, 0, len(k.Fields))
	for _, f := range k.Fields {
		if f.PrimaryKey {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func (k Kind) Field(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Registry struct {
	kinds []Kind
	index map[string]int
}

func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{
		kinds: kinds,
		index: make(map[string]int, len(kinds)),
	}
	for i, k := range kinds {
		r.index[k.Name] = i
	}
	return r
}

// Resolve maps a path segment to a registered kind.
func (r *Registry) Resolve(token string) (Kind, error) {
	i, ok := r.index[token]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, token)
	}
	return r.kinds[i], nil
}

func (r *Registry) Kinds() []Kind {
	return r.kinds
}

// Default returns the registry for the three entity kinds the service exposes.
// Table names follow the original singular convention; "order" is a reserved
// word in SQL, so the storage layer quotes every table name.
func Default() *Registry {
	return NewRegistry(
		Kind{
			Name:  "users",
			Table: "user",
			Fields: []Field{
				{Name: "id", Type: FieldInteger, PrimaryKey: true},
				{Name: "first_name", Type: FieldString},
				{Name: "last_name", Type: FieldString},
				{Name: "age", Type: FieldInteger},
				{Name: "email", Type: FieldString},
				{Name: "role", Type: FieldString},
				{Name: "phone", Type: FieldString},
			},
		},
		Kind{
			Name:  "orders",
			Table: "order",
			Fields: []Field{
				{Name: "id", Type: FieldInteger, PrimaryKey: true},
				{Name: "name", Type: FieldString},
				{Name: "description", Type: FieldString},
				{Name: "start_date", Type: FieldDate},
				{Name: "end_date", Type: FieldDate},
				{Name: "address", Type: FieldString},
				{Name: "price", Type: FieldInteger},
				{Name: "customer_id", Type: FieldInteger, References: "users"},
				{Name: "executor_id", Type: FieldInteger, References: "users"},
			},
		},
		Kind{
			Name:  "offers",
			Table: "offer",
			Fields: []Field{
				{Name: "id", Type: FieldInteger, PrimaryKey: true},
				{Name: "order_id", Type: FieldInteger, References: "orders"},
				{Name: "executor_id", Type: FieldInteger, References: "users"},
			},
		},
	)
}
