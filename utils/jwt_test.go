package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", claims.Address)
}

func TestParseTokenRejectsExpiredAndEmpty(t *testing.T) {
	expired, err := GenerateToken("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	require.Error(t, err)

	anonymous, err := GenerateToken("", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(anonymous)
	require.Error(t, err)

	_, err = ParseToken("garbage")
	require.Error(t, err)
}

func TestBlacklistMemoryFallback(t *testing.T) {
	BlacklistToken("tok-a", time.Now().Add(time.Hour))
	require.True(t, IsTokenBlacklisted("tok-a"))
	require.False(t, IsTokenBlacklisted("tok-b"))

	BlacklistToken("tok-c", time.Now().Add(-time.Second))
	require.False(t, IsTokenBlacklisted("tok-c"))
}
