package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordCreated(t *testing.T) {
	before := testutil.ToFloat64(workoutsCreated.WithLabelValues("running"))
	RecordCreated("running")
	require.Equal(t, before+1, testutil.ToFloat64(workoutsCreated.WithLabelValues("running")))
}

func TestRecordRejected(t *testing.T) {
	before := testutil.ToFloat64(submissionsRejected.WithLabelValues("missing_fields"))
	RecordRejected("missing_fields")
	RecordRejected("missing_fields")
	require.Equal(t, before+2, testutil.ToFloat64(submissionsRejected.WithLabelValues("missing_fields")))
}

func TestRecordRestored(t *testing.T) {
	before := testutil.ToFloat64(restoreSkipped)
	RecordRestored(3, 2)
	require.Equal(t, 3.0, testutil.ToFloat64(workoutsRestored))
	require.Equal(t, before+2, testutil.ToFloat64(restoreSkipped))

	RecordRestored(0, 0)
	require.Equal(t, 0.0, testutil.ToFloat64(workoutsRestored))
	require.Equal(t, before+2, testutil.ToFloat64(restoreSkipped))
}
