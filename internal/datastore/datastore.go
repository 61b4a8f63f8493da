// Package datastore is the thin client the panel uses to read and write rows
// in the data store that owns system_users and available_versions.
//
// Calls are composed the way a BaaS client composes them:
//
//	var rows []models.SystemUser
//	err := client.From("system_users").Select("*").Order("created_at", false).Find(ctx, &rows)
//
// There are no retries, no caching and no pagination. Errors from the store
// are returned as *Error so the caller can surface the store's own message.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
)

var (
	ErrInvalidTable  = errors.New("datastore: invalid table name")
	ErrInvalidColumn = errors.New("datastore: invalid column name")
	ErrInvalidDest   = errors.New("datastore: destination must be a non-nil pointer to a slice")
	ErrUnknownTable  = errors.New("datastore: unknown table")
	ErrNoRecords     = errors.New("datastore: nothing to insert")
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Filter is an equality filter on a single column.
type Filter struct {
	Column string
	Value  interface{}
}

type Order struct {
	Column    string
	Ascending bool
}

// Query is the backend-neutral form of a select.
type Query struct {
	Table   string
	Columns string
	Filters []Filter
	Order   *Order
}

// Backend executes queries against a concrete store.
type Backend interface {
	Select(ctx context.Context, q Query, dest interface{}) error
	// Insert writes rows, each a JSON object keyed by column name.
	Insert(ctx context.Context, table string, rows []json.RawMessage) error
}

type Client struct {
	backend Backend
}

func New(backend Backend) *Client {
	return &Client{backend: backend}
}

// From starts a call against table.
func (c *Client) From(table string) *QueryBuilder {
	b := &QueryBuilder{client: c, q: Query{Table: table, Columns: "*"}}
	if !identifierPattern.MatchString(table) {
		b.err = fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return b
}

// QueryBuilder accumulates a call. The first invalid argument is kept and
// reported by Find or Insert without reaching the backend.
type QueryBuilder struct {
	client *Client
	q      Query
	err    error
}

func (b *QueryBuilder) Select(columns string) *QueryBuilder {
	if columns == "" {
		columns = "*"
	}
	b.q.Columns = columns
	return b
}

func (b *QueryBuilder) Eq(column string, value interface{}) *QueryBuilder {
	if b.err == nil && !identifierPattern.MatchString(column) {
		b.err = fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	b.q.Filters = append(b.q.Filters, Filter{Column: column, Value: value})
	return b
}

func (b *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	if b.err == nil && !identifierPattern.MatchString(column) {
		b.err = fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	b.q.Order = &Order{Column: column, Ascending: ascending}
	return b
}

// Query returns the accumulated query.
func (b *QueryBuilder) Query() Query {
	return b.q
}

// Find runs the select and decodes the rows into dest, which must point to a slice.
func (b *QueryBuilder) Find(ctx context.Context, dest interface{}) error {
	if b.err != nil {
		return b.err
	}
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return ErrInvalidDest
	}
	return b.client.backend.Select(ctx, b.q, dest)
}

// Insert writes one record or a slice of records. Records are encoded as
// JSON objects, so struct json tags name the columns.
func (b *QueryBuilder) Insert(ctx context.Context, records interface{}) error {
	if b.err != nil {
		return b.err
	}
	rows, err := encodeRows(records)
	if err != nil {
		return err
	}
	return b.client.backend.Insert(ctx, b.q.Table, rows)
}

func encodeRows(records interface{}) ([]json.RawMessage, error) {
	if records == nil {
		return nil, ErrNoRecords
	}

	rv := reflect.ValueOf(records)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, ErrNoRecords
		}
		rv = rv.Elem()
	}

	var items []interface{}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			items = append(items, rv.Index(i).Interface())
		}
	} else {
		items = append(items, rv.Interface())
	}
	if len(items) == 0 {
		return nil, ErrNoRecords
	}

	rows := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("datastore: encode record: %w", err)
		}
		if len(data) == 0 || data[0] != '{' {
			return nil, fmt.Errorf("datastore: record must encode to a JSON object, got %s", data)
		}
		rows = append(rows, data)
	}
	return rows, nil
}
