package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	runsBefore := testutil.ToFloat64(MatchingRuns.WithLabelValues("success"))
	createdBefore := testutil.ToFloat64(MatchesCreated)
	unmatchedBefore := testutil.ToFloat64(MenteesUnmatched)

	RecordRun("success", 150*time.Millisecond, 3, 2)

	if got := testutil.ToFloat64(MatchingRuns.WithLabelValues("success")) - runsBefore; got != 1 {
		t.Errorf("runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(MatchesCreated) - createdBefore; got != 3 {
		t.Errorf("created delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(MenteesUnmatched) - unmatchedBefore; got != 2 {
		t.Errorf("unmatched delta = %v, want 2", got)
	}
}

func TestRecordCommitSkip(t *testing.T) {
	before := testutil.ToFloat64(CommitSkips.WithLabelValues("capacity"))
	RecordCommitSkip("capacity")
	RecordCommitSkip("capacity")

	if got := testutil.ToFloat64(CommitSkips.WithLabelValues("capacity")) - before; got != 2 {
		t.Errorf("skip delta = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/buddy/optin", "200"))
	RecordAPIRequest("POST", "/api/v1/buddy/optin", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/buddy/optin", "200")) - before; got != 1 {
		t.Errorf("request delta = %v, want 1", got)
	}
}
