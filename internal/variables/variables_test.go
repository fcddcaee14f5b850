package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_PublicExcludesBookkeeping(t *testing.T) {
	s := New(map[string]string{"author": "Ann", "toc": ""})
	s.Set(AnchorPrefix+"intro", "Intro")
	s.Set("%checklist", "")
	s.SetInt(FootnoteCount, 2)

	assert.Equal(t, map[string]string{"author": "Ann", "toc": ""}, s.Public())
	assert.True(t, s.Has("toc"))
}

func TestStore_Unset(t *testing.T) {
	s := New(map[string]string{"table-caption!": ""})
	assert.True(t, s.IsUnset("table-caption"))
	assert.False(t, s.Has("table-caption"))

	s.Set("table-caption", "Tab")
	assert.False(t, s.IsUnset("table-caption"))
	assert.Equal(t, "Tab", s.GetOr("table-caption", "Table"))
}

func TestStore_Counters(t *testing.T) {
	s := New(nil)
	assert.Equal(t, 1, s.Next(CounterPrefix+"Table", 1))
	assert.Equal(t, 2, s.Next(CounterPrefix+"Table", 1))
	assert.Equal(t, 3, s.Int(CounterPrefix+"Table", 0))

	s.Set("toclevels", "x")
	assert.Equal(t, 2, s.Int("toclevels", 2))
}
