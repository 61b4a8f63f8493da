package services

import (
	"testing"
	"time"

	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLog(t *testing.T) {
	db := testutil.NewDB(t)
	InitSystemLogger(db)
	t.Cleanup(func() { InitSystemLogger(nil) })

	LogInfo("SystemUser", "create", "created user123", nil, "10.0.0.1", "go-test", map[string]string{"username": "user123"})
	LogError("DataStore", "select", "connection refused", nil, "", "", nil)

	var logs []models.SystemLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "info", logs[0].Level)
	assert.JSONEq(t, `{"username":"user123"}`, logs[0].Extra)
	assert.Equal(t, "error", logs[1].Level)
	assert.Empty(t, logs[1].Extra)
}

func TestSystemLogService_ListAndModules(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewSystemLogService(db)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Level: "info", Module: "Auth", Action: "login", Message: "admin signed in", CreatedAt: now.Add(-time.Hour)},
		{Level: "error", Module: "DataStore", Action: "select", Message: "timeout", CreatedAt: now},
		{Level: "info", Module: "SystemUser", Action: "create", Message: "created user123", CreatedAt: now.Add(-2 * time.Hour)},
	}).Error)

	resp, err := svc.List(&SystemLogListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, "DataStore", resp.Items[0].Module)

	resp, err = svc.List(&SystemLogListRequest{Level: "info", Search: "user123"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "SystemUser", resp.Items[0].Module)

	modules, err := svc.GetModules()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Auth", "DataStore", "SystemUser"}, modules)
}

func TestLogCleanupScheduler_RunOnce(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, models.SeedDefaultData(db))
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Level: "info", Module: "Auth", Message: "old", CreatedAt: time.Now().AddDate(0, 0, -45)},
		{Level: "info", Module: "Auth", Message: "recent", CreatedAt: time.Now().AddDate(0, 0, -1)},
	}).Error)

	NewLogCleanupScheduler(db).RunOnce()

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}

func TestLogCleanupScheduler_Disabled(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewSystemLogService(db)
	require.NoError(t, NewSystemConfigService(db).Set("log_retention_days", "0"))
	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Message: "ancient", CreatedAt: time.Now().AddDate(-1, 0, 0)}).Error)

	NewLogCleanupScheduler(db).RunOnce()

	assert.Equal(t, 0, svc.GetRetentionDays())
	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
