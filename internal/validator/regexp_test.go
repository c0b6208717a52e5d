package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECMAEngine(t *testing.T) {
	t.Parallel()

	t.Run("outcomes are remembered", func(t *testing.T) {
		t.Parallel()
		e := newECMAEngine(time.Second)
		re, err := e.compile("^[a-z]+$")
		require.NoError(t, err)

		assert.True(t, re.MatchString("abc"))
		assert.False(t, re.MatchString("ABC"))
		assert.False(t, re.MatchString("ABC"))
		assert.Equal(t, 2, e.verdicts.Len())
		assert.False(t, e.timedOut("^[a-z]+$", "ABC"))
	})

	t.Run("timed out match is a mismatch", func(t *testing.T) {
		t.Parallel()
		e := newECMAEngine(time.Millisecond)
		re, err := e.compile("^(a+)+$")
		require.NoError(t, err)

		s := strings.Repeat("a", 64) + "!"
		assert.False(t, re.MatchString(s))
		assert.True(t, e.timedOut("^(a+)+$", s))
	})

	t.Run("unknown outcome is computed", func(t *testing.T) {
		t.Parallel()
		e := newECMAEngine(time.Millisecond)
		assert.True(t, e.timedOut("^(a+)+$", strings.Repeat("a", 64)+"!"))
		assert.False(t, e.timedOut("^a$", "b"))
		assert.False(t, e.timedOut("(", "b"))
	})

	t.Run("no timeout", func(t *testing.T) {
		t.Parallel()
		e := newECMAEngine(0)
		re, err := e.compile("^a$")
		require.NoError(t, err)

		assert.True(t, re.MatchString("a"))
		assert.Nil(t, e.verdicts)
		assert.False(t, e.timedOut("^a$", "b"))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := newECMAEngine(time.Second).compile("(")
		require.Error(t, err)
	})

	t.Run("keys separate pattern from input", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, keyOf("ab", "c"), keyOf("a", "bc"))
		assert.Equal(t, keyOf("a", "b"), keyOf("a", "b"))
	})
}
