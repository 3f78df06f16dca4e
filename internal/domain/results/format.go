package results

import (
	"fmt"
	"strconv"

	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// FormatValue renders an outcome value for the result column.
func FormatValue(o Outcome, vt kpis.ValueType) string {
	switch vt {
	case kpis.ValueFlag:
		return strconv.FormatBool(o.Flag)
	case kpis.ValueSeconds, kpis.ValueMegabytes:
		if o.Value == nil {
			return "0"
		}
		return valueString(o.Value)
	case kpis.ValuePercent:
		if o.Value == nil {
			return "0%"
		}
		return valueString(o.Value) + "%"
	default:
		if o.Value == nil {
			return ""
		}
		return valueString(o.Value)
	}
}

func valueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
