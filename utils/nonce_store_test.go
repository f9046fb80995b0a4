package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNonceIsSingleUse(t *testing.T) {
	addr := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	nonce := IssueNonce(addr, time.Minute)
	require.Len(t, nonce, 32)

	// lookups ignore address case
	got, ok := ConsumeNonce(strings.ToLower(addr))
	require.True(t, ok)
	require.Equal(t, nonce, got)

	_, ok = ConsumeNonce(addr)
	require.False(t, ok)
}

func TestNonceReissueReplaces(t *testing.T) {
	addr := "0x0000000000000000000000000000000000000B0b"
	first := IssueNonce(addr, time.Minute)
	second := IssueNonce(addr, time.Minute)
	require.NotEqual(t, first, second)

	got, ok := ConsumeNonce(addr)
	require.True(t, ok)
	require.Equal(t, second, got)
}

func TestNonceExpires(t *testing.T) {
	addr := "0x00000000000000000000000000000000000CA501"
	IssueNonce(addr, time.Nanosecond)
	time.Sleep(time.Millisecond)
	_, ok := ConsumeNonce(addr)
	require.False(t, ok)
}

func TestLoginMessage(t *testing.T) {
	require.Equal(t,
		"questhub wants you to sign in with your wallet:\n0xabc\n\nNonce: n1",
		LoginMessage("questhub", "0xabc", "n1"))
}
