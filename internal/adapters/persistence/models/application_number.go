package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewApplicationNumber returns a loan number in the LN-YYYYMMDD-XXXXXXXX form
func NewApplicationNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "LN-" + now.Format("20060102") + "-" + suffix
}
