package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMainChainState(t *testing.T) {
	before := testutil.ToFloat64(newlyStableMCIsTotal)
	rewindsBefore := testutil.ToFloat64(mainChainRewindsTotal)

	RecordMainChainState(7, 20, 3, true)

	if got := testutil.ToFloat64(lastStableMCIGauge); got != 7 {
		t.Fatalf("last stable mci gauge: expected 7, got %v", got)
	}
	if got := testutil.ToFloat64(lastMCIGauge); got != 20 {
		t.Fatalf("last mci gauge: expected 20, got %v", got)
	}
	if got := testutil.ToFloat64(newlyStableMCIsTotal) - before; got != 3 {
		t.Fatalf("newly stable mcis: expected an increase of 3, got %v", got)
	}
	if got := testutil.ToFloat64(mainChainRewindsTotal) - rewindsBefore; got != 1 {
		t.Fatalf("rewinds: expected an increase of 1, got %v", got)
	}
}

func TestRecordStabilityStall(t *testing.T) {
	before := testutil.ToFloat64(stabilityStallsTotal)

	RecordStabilityStall(12)
	RecordStabilityStall(12)

	if got := testutil.ToFloat64(stabilityStallsTotal) - before; got != 2 {
		t.Fatalf("stability stalls: expected an increase of 2, got %v", got)
	}
	if got := testutil.ToFloat64(stalledMCIGauge); got != 12 {
		t.Fatalf("stalled mci gauge: expected 12, got %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{200, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{503, "5xx"},
	}
	for _, test := range tests {
		if got := statusClass(test.status); got != test.expected {
			t.Errorf("statusClass(%d): expected %s, got %s", test.status, test.expected, got)
		}
	}
}
