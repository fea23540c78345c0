package observability

import (
	"testing"
	"time"

	"github.com/danmuck/handover/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordMessage("select", OutcomeHandled)
	RecordPairing("outbound", true)
	RecordTransfer(0, 1500*time.Millisecond)
	SetQueuedActions(2)
}

func TestRecordMessageIncrementsCounter(t *testing.T) {
	testlog.Start(t)
	before := testutil.ToFloat64(handoverMessages.WithLabelValues("request", OutcomeMalformed))
	RecordMessage("request", OutcomeMalformed)
	after := testutil.ToFloat64(handoverMessages.WithLabelValues("request", OutcomeMalformed))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestQueuedActionsGauge(t *testing.T) {
	testlog.Start(t)
	SetQueuedActions(3)
	if got := testutil.ToFloat64(queuedActions); got != 3 {
		t.Fatalf("unexpected gauge value %v", got)
	}
}
