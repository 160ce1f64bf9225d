package resource

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/schema"
)

// Storage is the narrow interface the mapper needs from the persistence
// layer. Absent rows surface as gorm.ErrRecordNotFound.
type Storage interface {
	Insert(ctx context.Context, kind schema.Kind, fields map[string]any) (int64, error)
	Get(ctx context.Context, kind schema.Kind, id int64) (map[string]any, error)
	List(ctx context.Context, kind schema.Kind) ([]map[string]any, error)
	Update(ctx context.Context, kind schema.Kind, id int64, fields map[string]any) error
	Delete(ctx context.Context, kind schema.Kind, id int64) error
}

// Mapper applies the CRUD operations uniformly across every registered kind.
// Entity-specific behavior lives in the schema registry, not here.
type Mapper struct {
	registry *schema.Registry
	store    Storage
	codec    *codec.Codec
}

func NewMapper(registry *schema.Registry, store Storage, cdc *codec.Codec) *Mapper {
	return &Mapper{registry: registry, store: store, codec: cdc}
}

// Collection resolves a kind token and fetches all of its records. The token
// is checked before any storage access.
func (m *Mapper) Collection(ctx context.Context, token string) (schema.Kind, []map[string]any, error) {
	kind, err := m.registry.Resolve(token)
	if err != nil {
		return schema.Kind{}, nil, err
	}
	records, err := m.store.List(ctx, kind)
	if err != nil {
		return schema.Kind{}, nil, fmt.Errorf("%w: list %s: %v", ErrStorage, kind.Name, err)
	}
	return kind, records, nil
}

// List renders the whole collection as a wire array; an empty collection
// renders as [].
func (m *Mapper) List(ctx context.Context, token string) ([]byte, error) {
	kind, records, err := m.Collection(ctx, token)
	if err != nil {
		return nil, err
	}
	return m.codec.EncodeList(kind, records)
}

// Create decodes a full write body and inserts a new record. The primary key
// is assigned by storage and returned to the caller.
func (m *Mapper) Create(ctx context.Context, token string, body []byte) (int64, error) {
	kind, err := m.registry.Resolve(token)
	if err != nil {
		return 0, err
	}
	record, err := m.codec.Decode(kind, body)
	if err != nil {
		return 0, err
	}
	if err := m.checkReferences(ctx, kind, record); err != nil {
		return 0, err
	}
	id, err := m.store.Insert(ctx, kind, record)
	if err != nil {
		return 0, fmt.Errorf("%w: insert %s: %v", ErrStorage, kind.Name, err)
	}
	return id, nil
}

// Get renders a single record looked up by primary key.
func (m *Mapper) Get(ctx context.Context, token string, id int64) ([]byte, error) {
	kind, err := m.registry.Resolve(token)
	if err != nil {
		return nil, err
	}
	record, err := m.store.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, kind.Name, id)
		}
		return nil, fmt.Errorf("%w: get %s %d: %v", ErrStorage, kind.Name, id, err)
	}
	return m.codec.Encode(kind, record)
}

// Replace overwrites every declared field of an existing record. The path id
// is authoritative; an id inside the body is ignored, as is any key outside
// the schema.
func (m *Mapper) Replace(ctx context.Context, token string, id int64, body []byte) error {
	kind, err := m.registry.Resolve(token)
	if err != nil {
		return err
	}
	if _, err := m.store.Get(ctx, kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %d", ErrNotFound, kind.Name, id)
		}
		return fmt.Errorf("%w: get %s %d: %v", ErrStorage, kind.Name, id, err)
	}
	record, err := m.codec.Decode(kind, body)
	if err != nil {
		return err
	}
	if err := m.checkReferences(ctx, kind, record); err != nil {
		return err
	}
	if err := m.store.Update(ctx, kind, id, record); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %d", ErrNotFound, kind.Name, id)
		}
		return fmt.Errorf("%w: update %s %d: %v", ErrStorage, kind.Name, id, err)
	}
	return nil
}

// Delete removes a record unconditionally. Rows referencing it are not
// cascaded or checked.
func (m *Mapper) Delete(ctx context.Context, token string, id int64) error {
	kind, err := m.registry.Resolve(token)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %d", ErrNotFound, kind.Name, id)
		}
		return fmt.Errorf("%w: delete %s %d: %v", ErrStorage, kind.Name, id, err)
	}
	return nil
}

// checkReferences verifies that every foreign-key field of the record points
// at an existing row, so writes cannot introduce dangling references.
func (m *Mapper) checkReferences(ctx context.Context, kind schema.Kind, record map[string]any) error {
	for _, f := range kind.DataFields() {
		if f.References == "" {
			continue
		}
		refKind, err := m.registry.Resolve(f.References)
		if err != nil {
			return err
		}
		refID, ok := record[f.Name].(int64)
		if !ok {
			return &codec.FieldError{Field: f.Name, Reason: "must be an integer"}
		}
		if _, err := m.store.Get(ctx, refKind, refID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &codec.FieldError{
					Field:  f.Name,
					Reason: fmt.Sprintf("references a missing %s record", refKind.Name),
				}
			}
			return fmt.Errorf("%w: get %s %d: %v", ErrStorage, refKind.Name, refID, err)
		}
	}
	return nil
}
