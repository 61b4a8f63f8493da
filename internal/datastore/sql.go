package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangang/lvepanel/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend serves the store tables from a gorm connection.
type SQLBackend struct {
	db     *gorm.DB
	tables map[string]func() interface{}
}

// NewSQLBackend returns a backend that knows system_users and
// available_versions.
func NewSQLBackend(db *gorm.DB) *SQLBackend {
	b := &SQLBackend{db: db, tables: make(map[string]func() interface{})}
	b.Register(models.TableSystemUsers, func() interface{} { return &[]models.SystemUser{} })
	b.Register(models.TableAvailableVersions, func() interface{} { return &[]models.AvailableVersion{} })
	return b
}

// Register makes table reachable. newSlice must return a pointer to an empty
// slice of the table's model; inserts decode into it so model hooks run.
func (b *SQLBackend) Register(table string, newSlice func() interface{}) {
	b.tables[table] = newSlice
}

func (b *SQLBackend) Select(ctx context.Context, q Query, dest interface{}) error {
	if _, ok := b.tables[q.Table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, q.Table)
	}

	tx := b.db.WithContext(ctx).Table(q.Table)
	if cols := selectColumns(q.Columns); len(cols) > 0 {
		tx = tx.Select(cols)
	}
	for _, f := range q.Filters {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	if q.Order != nil {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.Order.Column},
			Desc:   !q.Order.Ascending,
		})
	}

	if err := tx.Find(dest).Error; err != nil {
		return wrapSQLError(err)
	}
	return nil
}

func (b *SQLBackend) Insert(ctx context.Context, table string, rows []json.RawMessage) error {
	newSlice, ok := b.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if len(rows) == 0 {
		return ErrNoRecords
	}

	records := newSlice()
	payload := append([]byte{'['}, bytes.Join(rowsToBytes(rows), []byte{','})...)
	payload = append(payload, ']')
	if err := json.Unmarshal(payload, records); err != nil {
		return &Error{Status: 400, Code: "invalid_record", Message: err.Error()}
	}

	if err := b.db.WithContext(ctx).Create(records).Error; err != nil {
		return wrapSQLError(err)
	}
	return nil
}

func selectColumns(columns string) []string {
	if columns == "" || columns == "*" {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(columns, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func rowsToBytes(rows []json.RawMessage) [][]byte {
	out := make([][]byte, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func wrapSQLError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Status: 500, Code: "sql_error", Message: err.Error()}
}
