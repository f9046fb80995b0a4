package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	require.Equal(t, "Follow us", SanitizePlain("  <b>Follow</b> us<script>alert(1)</script> "))
	require.NotContains(t, Sanitize(`<a href="javascript:alert(1)">x</a><p>ok</p>`), "javascript")
	require.Contains(t, Sanitize(`<p>ok</p>`), "<p>ok</p>")
}
