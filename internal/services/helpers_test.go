package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/testutil"
	"gorm.io/gorm"
)

func newStore(t *testing.T) (*gorm.DB, *datastore.Client) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, datastore.New(datastore.NewSQLBackend(db))
}

// failingBackend fails every call with err and counts the calls.
type failingBackend struct {
	err     error
	selects int
	inserts int
}

func (b *failingBackend) Select(ctx context.Context, q datastore.Query, dest interface{}) error {
	b.selects++
	return b.err
}

func (b *failingBackend) Insert(ctx context.Context, table string, rows []json.RawMessage) error {
	b.inserts++
	return b.err
}
