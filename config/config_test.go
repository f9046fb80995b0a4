package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyRawGroupedSections(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"app": {"AppPort": "9000", "JWTSecret": "s3cret", "AdminAddresses": ["0xabc"]},
		"database": {"Driver": "sqlite", "DatabaseURI": "file::memory:"},
		"redis": {"Disabled": true},
		"engagement": {"CheckinRewardPoints": 25, "DirectReferralPercent": 12}
	}`), &raw))

	var c AppConfig
	applyRaw(raw, &c)
	applyDefaults(&c)

	require.Equal(t, "9000", c.AppPort)
	require.Equal(t, "s3cret", c.JWTSecret)
	require.Equal(t, []string{"0xabc"}, c.AdminAddresses)
	require.Equal(t, "sqlite", c.DBDriver)
	require.True(t, c.RedisDisabled)
	require.Equal(t, 25, c.CheckinRewardPoints)
	require.Equal(t, 12, c.DirectReferralPercent)
	require.Equal(t, 5, c.IndirectReferralPercent)
	require.Equal(t, "release", c.GinMode)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7001")
	t.Setenv("ADMIN_ADDRESSES", " 0xa , ,0xb")
	t.Setenv("REDIS_DISABLED", "true")
	t.Setenv("REFERRAL_INDIRECT_PERCENT", "3")

	c := AppConfig{AppPort: "8080"}
	applyEnvOverrides(&c)
	require.Equal(t, "7001", c.AppPort)
	require.Equal(t, []string{"0xa", "0xb"}, c.AdminAddresses)
	require.True(t, c.RedisDisabled)
	require.Equal(t, 3, c.IndirectReferralPercent)
}

func TestOverrideFillsDefaults(t *testing.T) {
	c := Override(AppConfig{JWTSecret: "x", DBDriver: "sqlite"})
	require.Equal(t, "x", Get().JWTSecret)
	require.Equal(t, 10, c.CheckinRewardPoints)
	require.Equal(t, 600, c.NonceTTLSeconds)
}

func TestOpenDatabaseSqlite(t *testing.T) {
	conn, err := OpenDatabase(AppConfig{DBDriver: "sqlite", DatabaseURI: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = OpenDatabase(AppConfig{DBDriver: "oracle"})
	require.Error(t, err)
}
