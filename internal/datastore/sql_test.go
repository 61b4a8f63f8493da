package datastore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLClient(t *testing.T) *Client {
	t.Helper()
	return New(NewSQLBackend(testutil.NewDB(t)))
}

func TestSQLBackend_InsertAndOrder(t *testing.T) {
	ctx := context.Background()
	client := newSQLClient(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []models.SystemUser{
		{Username: "alice", PHPVersion: "8.2", Status: "active", CreatedAt: base},
		{Username: "bob", PHPVersion: "7.4", Status: "suspended", CreatedAt: base.Add(time.Hour)},
		{Username: "carol", PHPVersion: "8.3", Status: "active", CreatedAt: base.Add(2 * time.Hour)},
	}
	require.NoError(t, client.From("system_users").Insert(ctx, records))

	var rows []models.SystemUser
	require.NoError(t, client.From("system_users").Select("*").Order("created_at", false).Find(ctx, &rows))

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"carol", "bob", "alice"}, []string{rows[0].Username, rows[1].Username, rows[2].Username})
	for _, r := range rows {
		assert.Len(t, r.ID, 36, "insert should assign a uuid")
	}
}

func TestSQLBackend_EqFilter(t *testing.T) {
	ctx := context.Background()
	client := newSQLClient(t)

	require.NoError(t, client.From("available_versions").Insert(ctx, []models.AvailableVersion{
		{SoftwareType: "php", Version: "8.2", IsActive: true},
		{SoftwareType: "php", Version: "5.6", IsActive: false},
		{SoftwareType: "mysql", Version: "8.0", IsActive: true},
	}))

	var active []models.AvailableVersion
	require.NoError(t, client.From("available_versions").Select("*").Eq("is_active", true).Find(ctx, &active))
	assert.Len(t, active, 2)
	for _, v := range active {
		assert.True(t, v.IsActive)
	}

	var php []models.AvailableVersion
	require.NoError(t, client.From("available_versions").Eq("software_type", "php").Eq("is_active", false).Find(ctx, &php))
	require.Len(t, php, 1)
	assert.Equal(t, "5.6", php[0].Version)
}

func TestSQLBackend_SingleRecordInsert(t *testing.T) {
	ctx := context.Background()
	client := newSQLClient(t)

	require.NoError(t, client.From("system_users").Insert(ctx, &models.SystemUser{Username: "dave", Status: "active"}))

	var rows []models.SystemUser
	require.NoError(t, client.From("system_users").Eq("username", "dave").Find(ctx, &rows))
	require.Len(t, rows, 1)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestSQLBackend_UnknownTable(t *testing.T) {
	client := newSQLClient(t)

	var rows []map[string]interface{}
	err := client.From("users").Find(context.Background(), &rows)
	assert.True(t, errors.Is(err, ErrUnknownTable))

	err = client.From("refresh_tokens").Insert(context.Background(), map[string]string{"token_hash": "x"})
	assert.True(t, errors.Is(err, ErrUnknownTable))
}

func TestQueryBuilder_Validation(t *testing.T) {
	client := newSQLClient(t)
	ctx := context.Background()
	var rows []models.SystemUser

	assert.ErrorIs(t, client.From("").Find(ctx, &rows), ErrInvalidTable)
	assert.ErrorIs(t, client.From("system_users; drop").Find(ctx, &rows), ErrInvalidTable)
	assert.ErrorIs(t, client.From("system_users").Eq("name = 1 or 1", 1).Find(ctx, &rows), ErrInvalidColumn)
	assert.ErrorIs(t, client.From("system_users").Order("created_at desc", true).Find(ctx, &rows), ErrInvalidColumn)
	assert.ErrorIs(t, client.From("system_users").Find(ctx, rows), ErrInvalidDest)
	assert.ErrorIs(t, client.From("system_users").Insert(ctx, []models.SystemUser{}), ErrNoRecords)
	assert.ErrorIs(t, client.From("system_users").Insert(ctx, nil), ErrNoRecords)
}

func TestQueryBuilder_Query(t *testing.T) {
	q := New(nil).From("available_versions").Select("").Eq("is_active", true).Order("software_type", true).Query()

	assert.Equal(t, "available_versions", q.Table)
	assert.Equal(t, "*", q.Columns)
	assert.Equal(t, []Filter{{Column: "is_active", Value: true}}, q.Filters)
	assert.Equal(t, &Order{Column: "software_type", Ascending: true}, q.Order)
}
