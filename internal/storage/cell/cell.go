// Package cell renders record values into artifact cells. All sinks share
// this rendering so a run produces the same cell text regardless of output
// kind: dates as ISO dates, datetimes with their clock, decimals exactly,
// absent fields as the empty string.
package cell

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Text renders v as artifact cell text.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case decimal.Decimal:
		return x.String()
	case float64:
		return decimal.NewFromFloat(x).String()
	default:
		return fmt.Sprint(x)
	}
}
