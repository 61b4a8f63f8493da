package services

import (
	"testing"

	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigService(t *testing.T) *SystemConfigService {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, models.SeedDefaultData(db))
	return NewSystemConfigService(db)
}

func TestSystemConfigService_GetSet(t *testing.T) {
	svc := newConfigService(t)

	assert.Equal(t, "30", svc.GetWithDefault("log_retention_days", "7"))
	assert.Equal(t, "fallback", svc.GetWithDefault("missing_key", "fallback"))

	require.NoError(t, svc.Set("log_retention_days", "14"))
	require.NoError(t, svc.Set("brand_new_key", "x"))
	assert.Equal(t, 14, svc.GetInt("log_retention_days", 30))
	assert.Equal(t, "x", svc.GetWithDefault("brand_new_key", ""))
}

func TestSystemConfigService_GetByGroup(t *testing.T) {
	svc := newConfigService(t)

	auth, err := svc.GetByGroup("auth")
	require.NoError(t, err)
	assert.Len(t, auth, 2)
}

func TestSystemConfigService_UpdateLDAPConfig(t *testing.T) {
	svc := newConfigService(t)
	enabled := true
	host := "ldap.example.com"
	port := 636
	password := "s3cret"

	require.NoError(t, svc.UpdateLDAPConfig(&UpdateLDAPConfigRequest{
		Enabled:      &enabled,
		Host:         &host,
		Port:         &port,
		BindPassword: &password,
	}))

	resp := svc.GetLDAPConfig()
	assert.True(t, resp.Enabled)
	assert.Equal(t, "ldap.example.com", resp.Host)
	assert.Equal(t, 636, resp.Port)
	assert.True(t, resp.PasswordSet)

	empty := ""
	require.NoError(t, svc.UpdateLDAPConfig(&UpdateLDAPConfigRequest{BindPassword: &empty}))
	assert.Equal(t, "s3cret", svc.LDAPSettings(nil).BindPassword)
}

func TestSystemConfigService_LDAPSettingsFallback(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewSystemConfigService(db)

	settings := svc.LDAPSettings(&config.LDAPConfig{Enabled: true, Host: "dir.local"})
	assert.True(t, settings.Enabled)
	assert.Equal(t, "dir.local", settings.Host)
	assert.Equal(t, 389, settings.Port)
	assert.Equal(t, "(uid=%s)", settings.UserFilter)
}

func TestSystemConfigService_AuthSessionConfig(t *testing.T) {
	svc := newConfigService(t)

	resp := svc.GetAuthSessionConfig(24)
	assert.Equal(t, 24, resp.AccessTokenExpireHours)
	assert.Equal(t, 720, resp.RefreshTokenExpireHours)

	access := 8
	require.NoError(t, svc.UpdateAuthSessionConfig(&UpdateAuthSessionConfigRequest{AccessTokenExpireHours: &access}))
	resp = svc.GetAuthSessionConfig(24)
	assert.Equal(t, 8, resp.AccessTokenExpireHours)
	assert.Equal(t, 720, resp.RefreshTokenExpireHours)
}
