package results

import (
	"strconv"
	"strings"

	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// Evaluate compares an outcome against a target threshold.
//
// Flag KPIs ignore the threshold entirely: miss iff the flag is raised.
// For numeric KPIs the comparison direction depends on the value type:
// Sec and MB are cost-like (hit iff value <= target), % is quality-like
// (hit iff value >= target). A missing threshold, an unparseable value or
// threshold, and an unknown value type all degrade to the flag-only rule —
// evaluation never fails outright.
func Evaluate(o Outcome, target string, vt kpis.ValueType) Verdict {
	if vt == kpis.ValueFlag {
		return flagVerdict(o.Flag)
	}
	if strings.TrimSpace(target) == "" {
		return flagVerdict(o.Flag)
	}

	targetNum, err := strconv.ParseFloat(strings.TrimSpace(target), 64)
	if err != nil {
		return flagVerdict(o.Flag)
	}
	valueNum, ok := numericValue(o.Value)
	if !ok {
		return flagVerdict(o.Flag)
	}

	switch vt {
	case kpis.ValueSeconds, kpis.ValueMegabytes:
		if valueNum <= targetNum {
			return VerdictHit
		}
		return VerdictMiss
	case kpis.ValuePercent:
		if valueNum >= targetNum {
			return VerdictHit
		}
		return VerdictMiss
	default:
		return flagVerdict(o.Flag)
	}
}

func flagVerdict(flag bool) Verdict {
	if flag {
		return VerdictMiss
	}
	return VerdictHit
}

// numericValue coerces an outcome value to float64. A nil or empty value
// counts as 0 (an absent reading compares as worst-case, not as an error);
// a value that cannot be parsed reports !ok so the caller can fall back.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
