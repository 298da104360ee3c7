package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCharge(t *testing.T) {
	before := testutil.ToFloat64(ChargedAmount)
	count := testutil.ToFloat64(ChargesCreated)

	RecordCharge(100)
	RecordCharge(0)

	if got := testutil.ToFloat64(ChargedAmount) - before; got != 100 {
		t.Fatalf("charged amount delta = %v", got)
	}
	if got := testutil.ToFloat64(ChargesCreated) - count; got != 2 {
		t.Fatalf("charges delta = %v", got)
	}
}

func TestIncrementLoginFailure(t *testing.T) {
	before := testutil.ToFloat64(LoginFailures.WithLabelValues("throttled"))
	IncrementLoginFailure("throttled")
	if got := testutil.ToFloat64(LoginFailures.WithLabelValues("throttled")) - before; got != 1 {
		t.Fatalf("delta = %v", got)
	}
}
