package progress

import (
	"math"
	"testing"

	"github.com/md2xlsx/webui/internal/testutil"
	"github.com/md2xlsx/webui/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{42.4, 42},
		{42.5, 43},
		{99.6, 100},
		{150, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in), "Clamp(%v)", tt.in)
	}
}

func TestIndicator_Lifecycle(t *testing.T) {
	doc := ui.NewDocument(nil)
	sched := testutil.NewManualScheduler()
	ind := New(doc.Progress, sched, "Progress")

	ind.Create()
	require.Equal(t, 1, doc.Progress.Len())
	assert.True(t, ind.State().Visible)
	assert.Equal(t, 0, ind.State().Percent)

	ind.Update(37.6)
	node := doc.Progress.Find(NodeID)
	require.NotNil(t, node)
	assert.Equal(t, "38", node.Attrs["percent"])
	assert.Equal(t, "38%", node.Text)

	ind.Complete()
	assert.Equal(t, 100, ind.State().Percent)
	assert.Equal(t, 1, doc.Progress.Len(), "bar stays visible until the delay passes")

	sched.Advance(CompleteDelay)
	assert.Equal(t, 0, doc.Progress.Len())
	assert.False(t, ind.State().Visible)
}

func TestIndicator_RemoveIsIdempotent(t *testing.T) {
	var patches []ui.Patch
	doc := ui.NewDocument(func(p ui.Patch) { patches = append(patches, p) })
	ind := New(doc.Progress, testutil.NewManualScheduler(), "")

	ind.Remove()
	assert.Empty(t, patches)

	ind.Create()
	ind.Remove()
	ind.Remove()
	assert.Equal(t, 0, doc.Progress.Len())
	assert.Equal(t, ui.OpRemove, patches[len(patches)-1].Op)
	assert.Len(t, patches, 2)
}

func TestIndicator_UpdateWithoutBar(t *testing.T) {
	doc := ui.NewDocument(nil)
	ind := New(doc.Progress, testutil.NewManualScheduler(), "")

	ind.Update(50)
	assert.Equal(t, 0, doc.Progress.Len())
	assert.False(t, ind.State().Visible)
}

func TestIndicator_RemoveCancelsPendingCompletion(t *testing.T) {
	doc := ui.NewDocument(nil)
	sched := testutil.NewManualScheduler()
	ind := New(doc.Progress, sched, "")

	ind.Create()
	ind.Complete()
	ind.Remove()
	assert.Equal(t, 0, sched.PendingTimers())

	// A fresh bar must not be taken down by the earlier completion.
	ind.Create()
	sched.Advance(CompleteDelay)
	assert.Equal(t, 1, doc.Progress.Len())
}

func TestIndicator_CreateReplacesCompletingBar(t *testing.T) {
	doc := ui.NewDocument(nil)
	sched := testutil.NewManualScheduler()
	ind := New(doc.Progress, sched, "Progress")

	ind.Create()
	ind.Complete()
	ind.Create()
	require.Equal(t, 1, doc.Progress.Len())
	assert.Equal(t, 0, sched.PendingTimers())

	ind.Update(50)
	assert.Equal(t, "50%", doc.Progress.Find(NodeID).Text)

	ind.Complete()
	sched.Advance(CompleteDelay)
	assert.Equal(t, 0, doc.Progress.Len())
}
