package rxid

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rxPattern = regexp.MustCompile(`^RX-\d{8}-[0-9a-f]{8}$`)

func TestNew_Format(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	id := New(now)
	require.Regexp(t, rxPattern, id)
	assert.Contains(t, id, "RX-20260315-")
}

func TestNew_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := New(now)
		_, exists := seen[id]
		require.False(t, exists, "duplicate prescription id: %s", id)
		seen[id] = struct{}{}
	}
}
