package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	re := regexp.MustCompile(`^ORD-2025-[0-9A-F]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewOrderNumber(now)
		assert.Regexp(t, re, n)
		seen[n] = true
	}
	// codes are random; 100 draws colliding would be astonishing
	assert.Greater(t, len(seen), 95)
}
