package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/testutil"
	"github.com/md2xlsx/webui/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T) (*Queue, *ui.Document, *testutil.ManualScheduler) {
	t.Helper()
	doc := ui.NewDocument(nil)
	sched := testutil.NewManualScheduler()
	return New(doc.Notices, sched), doc, sched
}

func texts(nodes []ui.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Text)
	}
	return out
}

func TestShow_FirstBecomesSoleEntry(t *testing.T) {
	q, _, _ := newQueue(t)

	n := q.Show("A", models.SeverityInfo)
	require.Len(t, q.Visible(), 1)
	assert.Equal(t, n.ID, q.Visible()[0].ID)
}

func TestShow_InsertsAfterFirst(t *testing.T) {
	q, _, _ := newQueue(t)

	q.Show("A", models.SeverityInfo)
	q.Show("B", models.SeverityInfo)
	assert.Equal(t, []string{"A", "B"}, texts(q.Visible()))

	// A third entry goes right after the first, not at the end of the stack.
	q.Show("C", models.SeverityInfo)
	assert.Equal(t, []string{"A", "C", "B"}, texts(q.Visible()))
}

func TestShow_AfterDismissBecomesSole(t *testing.T) {
	q, _, _ := newQueue(t)

	a := q.Show("A", models.SeverityInfo)
	require.True(t, q.Dismiss(a.ID))
	q.Show("B", models.SeverityInfo)

	assert.Equal(t, []string{"B"}, texts(q.Visible()))
}

func TestShow_AutoDismiss(t *testing.T) {
	q, _, sched := newQueue(t)

	q.Show("A", models.SeverityError)
	sched.Advance(AutoDismiss - time.Millisecond)
	assert.Len(t, q.Visible(), 1)

	sched.Advance(time.Millisecond)
	assert.Empty(t, q.Visible())
}

func TestShow_AutoDismissRemovesLastOfSameClass(t *testing.T) {
	q, _, sched := newQueue(t)

	q.Show("err1", models.SeverityError)
	sched.Advance(time.Second)
	q.Show("ok", models.SeveritySuccess)
	q.Show("err2", models.SeverityError)
	assert.Equal(t, []string{"err1", "err2", "ok"}, texts(q.Visible()))

	// err1's timer removes the last error entry still present.
	sched.Advance(4 * time.Second)
	assert.Equal(t, []string{"err1", "ok"}, texts(q.Visible()))

	sched.Advance(time.Second)
	assert.Empty(t, q.Visible())
}

func TestShow_AutoDismissAfterManualDismissIsNoop(t *testing.T) {
	q, _, sched := newQueue(t)

	a := q.Show("A", models.SeverityWarning)
	q.Show("B", models.SeverityInfo)
	q.Dismiss(a.ID)

	sched.Advance(AutoDismiss)
	assert.Empty(t, q.Visible())
	assert.Equal(t, 0, sched.PendingTimers())
}

func TestShow_Styles(t *testing.T) {
	q, _, _ := newQueue(t)

	cases := []struct {
		sev   models.Severity
		class string
		icon  string
	}{
		{models.SeveritySuccess, "alert-success", "fa-check-circle"},
		{models.SeverityError, "alert-danger", "fa-exclamation-triangle"},
		{models.SeverityWarning, "alert-warning", "fa-exclamation-circle"},
		{models.SeverityInfo, "alert-info", "fa-info-circle"},
		{models.Severity("critical"), "alert-info", "fa-info-circle"},
	}
	for _, c := range cases {
		n := q.Show("x", c.sev)
		node := q.region.Find(n.ID)
		require.NotNil(t, node)
		assert.Equal(t, c.class, node.Class, string(c.sev))
		assert.Equal(t, c.icon, node.Icon, string(c.sev))
	}
	assert.Equal(t, models.SeverityInfo, Normalize("critical"))
}

func TestShow_EmitsPatchesInCallOrder(t *testing.T) {
	var patches []ui.Patch
	doc := ui.NewDocument(func(p ui.Patch) { patches = append(patches, p) })
	q := New(doc.Notices, testutil.NewManualScheduler())

	q.Show("A", models.SeverityInfo)
	q.Show("B", models.SeverityInfo)

	require.Len(t, patches, 2)
	assert.Equal(t, ui.OpPrepend, patches[0].Op)
	assert.Equal(t, ui.OpInsertAfter, patches[1].Op)
	assert.Equal(t, patches[0].Node.ID, patches[1].Ref)
}

func TestReportHelpers(t *testing.T) {
	doc := ui.NewDocument(nil)
	q := New(doc.Notices, testutil.NewManualScheduler(), WithMessages(messages.Default("en")))

	q.ReportError(errors.New("boom"), "submit")
	q.ReportNetworkError()
	q.ReportFileError("a.md", errors.New("unreadable"))

	got := texts(q.Visible())
	assert.ElementsMatch(t, []string{
		"an error occurred: boom",
		"a network error occurred, please check your connection",
		`error while processing file "a.md": unreadable`,
	}, got)
	for _, n := range q.Visible() {
		assert.Equal(t, "alert-danger", n.Class)
	}
}
