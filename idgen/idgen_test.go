package idgen

import (
	"regexp"
	"testing"

	"github.com/anhtu/notebox/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hexRe   = regexp.MustCompile(`^[0-9a-f]+$`)
	alphaRe = regexp.MustCompile(`^[A-Za-z]+$`)
)

func TestNoteID(t *testing.T) {
	id := NoteID()
	assert.Len(t, id, 32)
	assert.Regexp(t, hexRe, id)
	assert.NotEqual(t, id, NoteID())
}

func TestSessionToken(t *testing.T) {
	token := SessionToken()
	assert.Len(t, token, 64)
	assert.Regexp(t, hexRe, token)
	assert.NotEqual(t, token, SessionToken())
}

func TestShortID(t *testing.T) {
	id := ShortID(ShortIDLength)
	assert.Len(t, id, 8)
	assert.Regexp(t, alphaRe, id)
}

func TestUniqueShortID_SkipsCollisions(t *testing.T) {
	taken := map[string]bool{}
	calls := 0
	id, err := UniqueShortID(func(id string) bool {
		calls++
		// Pretend the first candidate is taken.
		if calls == 1 {
			taken[id] = true
			return true
		}
		return taken[id]
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, taken[id])
	assert.Equal(t, 2, calls)
}

func TestUniqueShortID_Exhaustion(t *testing.T) {
	calls := 0
	_, err := UniqueShortID(func(string) bool {
		calls++
		return true
	})
	require.ErrorIs(t, err, interfaces.ErrIDSpaceExhausted)
	assert.Equal(t, MaxShortIDAttempts, calls)
}
