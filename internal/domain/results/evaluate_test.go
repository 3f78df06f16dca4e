package results

import (
	"testing"

	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

func TestEvaluateFlag(t *testing.T) {
	if got := Evaluate(Outcome{Flag: true}, "", kpis.ValueFlag); got != VerdictMiss {
		t.Errorf("raised flag: got %s, want miss", got)
	}
	if got := Evaluate(Outcome{Flag: false}, "whatever", kpis.ValueFlag); got != VerdictHit {
		t.Errorf("clear flag: got %s, want hit", got)
	}
}

func TestEvaluateNumeric(t *testing.T) {
	tests := []struct {
		name   string
		o      Outcome
		target string
		vt     kpis.ValueType
		want   Verdict
	}{
		{"seconds under target", Outcome{Value: 2.5}, "3", kpis.ValueSeconds, VerdictHit},
		{"seconds at target", Outcome{Value: 3.0}, "3", kpis.ValueSeconds, VerdictHit},
		{"seconds over target", Outcome{Value: 3.1}, "3", kpis.ValueSeconds, VerdictMiss},
		{"megabytes under target", Outcome{Value: 1}, "2", kpis.ValueMegabytes, VerdictHit},
		{"megabytes over target", Outcome{Value: 5}, "2", kpis.ValueMegabytes, VerdictMiss},
		{"percent above target", Outcome{Value: 99.5}, "99", kpis.ValuePercent, VerdictHit},
		{"percent at target", Outcome{Value: 99.0}, "99", kpis.ValuePercent, VerdictHit},
		{"percent below target", Outcome{Value: 98.0}, "99", kpis.ValuePercent, VerdictMiss},
		{"string value parsed", Outcome{Value: "2.5"}, "3", kpis.ValueSeconds, VerdictHit},
		{"int value parsed", Outcome{Value: 4}, "3", kpis.ValueSeconds, VerdictMiss},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.o, tc.target, tc.vt); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

// A nil reading compares as zero, which is worst-case for percent KPIs
// and best-case for cost KPIs.
func TestEvaluateNilValue(t *testing.T) {
	if got := Evaluate(Outcome{Value: nil}, "99", kpis.ValuePercent); got != VerdictMiss {
		t.Errorf("nil percent: got %s, want miss", got)
	}
	if got := Evaluate(Outcome{Value: nil}, "3", kpis.ValueSeconds); got != VerdictHit {
		t.Errorf("nil seconds: got %s, want hit", got)
	}
}

func TestEvaluateFallsBackToFlag(t *testing.T) {
	tests := []struct {
		name   string
		o      Outcome
		target string
		vt     kpis.ValueType
	}{
		{"empty target", Outcome{Flag: true, Value: 1.0}, "", kpis.ValueSeconds},
		{"unparseable target", Outcome{Flag: true, Value: 1.0}, "fast", kpis.ValueSeconds},
		{"unparseable value", Outcome{Flag: true, Value: "n/a"}, "3", kpis.ValueSeconds},
		{"unknown value type", Outcome{Flag: true, Value: 1.0}, "3", kpis.ValueType("Count")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.o, tc.target, tc.vt); got != VerdictMiss {
				t.Errorf("flag raised: got %s, want miss", got)
			}
			tc.o.Flag = false
			if got := Evaluate(tc.o, tc.target, tc.vt); got != VerdictHit {
				t.Errorf("flag clear: got %s, want hit", got)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		vt   kpis.ValueType
		want string
	}{
		{"flag true", Outcome{Flag: true}, kpis.ValueFlag, "true"},
		{"flag false", Outcome{Flag: false}, kpis.ValueFlag, "false"},
		{"seconds", Outcome{Value: 2.5}, kpis.ValueSeconds, "2.5"},
		{"seconds nil", Outcome{}, kpis.ValueSeconds, "0"},
		{"megabytes int", Outcome{Value: 12}, kpis.ValueMegabytes, "12"},
		{"percent", Outcome{Value: 99.5}, kpis.ValuePercent, "99.5%"},
		{"percent nil", Outcome{}, kpis.ValuePercent, "0%"},
		{"unknown type nil", Outcome{}, kpis.ValueType("Count"), ""},
		{"unknown type string", Outcome{Value: "abc"}, kpis.ValueType("Count"), "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatValue(tc.o, tc.vt); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
