package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinLimiterWindow(t *testing.T) {
	l := NewJoinLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("u1"), "attempt %d within limit", i)
	}
	assert.False(t, l.Allow("u1"))
	assert.True(t, l.Allow("u2"), "limits are per identity")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow("u1"), "window slid, attempts allowed again")
}
