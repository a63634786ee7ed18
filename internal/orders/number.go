package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxNumberAttempts bounds regeneration on order-number collisions.
const maxNumberAttempts = 5

// NewOrderNumber builds ORD-<year>-<8-char code>. Uniqueness is enforced by
// the database; collisions are handled by regenerating.
func NewOrderNumber(now time.Time) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%d-%s", now.Year(), code)
}
