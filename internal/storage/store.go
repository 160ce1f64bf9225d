package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/eldos/workmarket/internal/schema"
)

// Store is the storage collaborator for the resource mapper. Rows travel as
// plain field maps so a single implementation serves every registered kind.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Insert adds a row and returns the primary key the database assigned.
// A client-supplied id in fields is never consulted.
func (s *Store) Insert(ctx context.Context, kind schema.Kind, fields map[string]any) (int64, error) {
	dataFields := kind.DataFields()
	columns := make([]string, 0, len(dataFields))
	placeholders := make([]string, 0, len(dataFields))
	args := make([]any, 0, len(dataFields))
	for _, f := range dataFields {
		columns = append(columns, quoteIdent(f.Name))
		placeholders = append(placeholders, "?")
		args = append(args, bindValue(f, fields[f.Name]))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quoteIdent(kind.Table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	var id int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&id).Error; err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the row with the given primary key, or gorm.ErrRecordNotFound.
func (s *Store) Get(ctx context.Context, kind schema.Kind, id int64) (map[string]any, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = ? LIMIT 1",
		columnList(kind),
		quoteIdent(kind.Table),
	)

	var row map[string]any
	if err := s.db.WithContext(ctx).Raw(query, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

// List returns every row of the kind in insertion order.
func (s *Store) List(ctx context.Context, kind schema.Kind) ([]map[string]any, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id",
		columnList(kind),
		quoteIdent(kind.Table),
	)

	var rows []map[string]any
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update overwrites every non-key column of the row with the given id.
func (s *Store) Update(ctx context.Context, kind schema.Kind, id int64, fields map[string]any) error {
	dataFields := kind.DataFields()
	assignments := make([]string, 0, len(dataFields))
	args := make([]any, 0, len(dataFields)+1)
	for _, f := range dataFields {
		assignments = append(assignments, quoteIdent(f.Name)+" = ?")
		args = append(args, bindValue(f, fields[f.Name]))
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ?",
		quoteIdent(kind.Table),
		strings.Join(assignments, ", "),
	)

	tx := s.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the row with the given id. No dependency check: rows
// referencing the deleted one are left dangling.
func (s *Store) Delete(ctx context.Context, kind schema.Kind, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdent(kind.Table))

	tx := s.db.WithContext(ctx).Exec(query, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func columnList(kind schema.Kind) string {
	columns := make([]string, 0, len(kind.Fields))
	for _, f := range kind.Fields {
		columns = append(columns, quoteIdent(f.Name))
	}
	return strings.Join(columns, ", ")
}

// bindValue normalizes stored-record scalars for the driver. Dates are kept
// as YYYY-MM-DD text so both backends return them in the same shape.
func bindValue(f schema.Field, value any) any {
	if f.Type == schema.FieldDate {
		if t, ok := value.(time.Time); ok {
			return t.Format("2006-01-02")
		}
	}
	return value
}

// quoteIdent wraps an identifier in double quotes; "order" and "user" are
// reserved words in most SQL dialects.
func quoteIdent(name string) string {
	return `"` + name + `"`
}
