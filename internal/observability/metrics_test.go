package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/5hells/icm/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(framesTotal.WithLabelValues(DirectionIn, "query_monitors"))
	RecordFrame(DirectionIn, "query_monitors", 16)
	RecordFrame(DirectionOut, "monitors_data", 20)
	RecordFrameError("length_too_small")
	RecordHandle("query_monitors", 3*time.Millisecond)
	ConnectionOpened()
	ConnectionClosed()

	after := testutil.ToFloat64(framesTotal.WithLabelValues(DirectionIn, "query_monitors"))
	if after-before != 1 {
		t.Fatalf("expected one recorded frame, got %v", after-before)
	}
}
