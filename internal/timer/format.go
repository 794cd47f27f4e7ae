package timer

import (
	"fmt"
	"time"
)

// FormatRemaining 显示为 秒.毫秒s，例如 9.046s
func FormatRemaining(d time.Duration) string {
	ms := max(d.Milliseconds(), 0)
	return fmt.Sprintf("%d.%03ds", ms/1000, ms%1000)
}
