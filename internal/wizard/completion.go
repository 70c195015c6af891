package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ComplaintID builds "<prefix><last 6 digits of unix millis><suffix>".
// Uniqueness is probabilistic; nothing downstream enforces it.
func ComplaintID(prefix string, now time.Time, suffix string) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return prefix + ms + suffix
}

// RandomSuffix returns three uppercase alphanumeric characters
func RandomSuffix() string {
	return strings.ToUpper(uuid.NewString()[:3])
}

// FormatWindow renders a response window the way citizens are told it,
// e.g. "24 hours".
func FormatWindow(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}
