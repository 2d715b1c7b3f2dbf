package dragdrop

import (
	"testing"

	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/notify"
	"github.com/md2xlsx/webui/internal/policy"
	"github.com/md2xlsx/webui/internal/testutil"
	"github.com/md2xlsx/webui/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc     *ui.Document
	notices *notify.Queue
	ctrl    *Controller
	got     [][]models.FileDescriptor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{doc: ui.NewDocument(nil)}
	f.notices = notify.New(f.doc.Notices, testutil.NewManualScheduler())
	f.ctrl = New(Config{
		Document:  f.doc,
		Validator: intake.NewValidator(policy.Default(), nil),
		Notices:   f.notices,
		OnFiles:   func(files []models.FileDescriptor) { f.got = append(f.got, files) },
	})
	return f
}

func TestHandle_HoverStates(t *testing.T) {
	f := newFixture(t)

	for _, kind := range []EventKind{Enter, Over, Leave, Drop} {
		d, err := f.ctrl.Handle(Event{Kind: kind})
		require.NoError(t, err)
		assert.True(t, d.PreventDefault, string(kind))
		assert.True(t, d.StopPropagation, string(kind))

		hovering := kind == Enter || kind == Over
		assert.Equal(t, hovering, f.ctrl.State() == Hovering, string(kind))
		assert.Equal(t, hovering, f.doc.DropZone.HasClass(HoverClass), string(kind))
	}
	// the final drop carried no files
	assert.Len(t, f.notices.Visible(), 1)
}

func TestDrop_NoFiles(t *testing.T) {
	f := newFixture(t)
	f.doc.Input.SetFiles([]models.FileDescriptor{testutil.File("keep.md", "# keep")})

	_, err := f.ctrl.Handle(Event{Kind: Drop})
	require.NoError(t, err)

	notices := f.notices.Visible()
	require.Len(t, notices, 1)
	assert.Equal(t, "alert-danger", notices[0].Class)
	assert.Equal(t, "no valid Markdown files", notices[0].Text)
	assert.Equal(t, []string{"keep.md"}, testutil.Names(f.doc.Input.Files()))
	assert.Empty(t, f.got)
}

func TestHandle_UnknownEvent(t *testing.T) {
	f := newFixture(t)

	d, err := f.ctrl.Handle(Event{Kind: "wheel"})
	assert.Error(t, err)
	assert.True(t, d.PreventDefault)
}

func TestDrop_AllInvalid(t *testing.T) {
	f := newFixture(t)
	f.doc.Input.SetFiles([]models.FileDescriptor{testutil.File("keep.md", "# keep")})

	_, err := f.ctrl.Handle(Event{Kind: Drop, Files: []models.FileDescriptor{
		testutil.File("a.pdf", "%PDF"),
		testutil.File("b.txt", "text"),
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.md"}, testutil.Names(f.doc.Input.Files()), "input untouched")
	notices := f.notices.Visible()
	require.Len(t, notices, 1)
	assert.Equal(t, "alert-danger", notices[0].Class)
	assert.Equal(t, "no valid Markdown files", notices[0].Text)
	assert.Empty(t, f.got)
}

func TestDrop_Mixed(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Handle(Event{Kind: Drop, Files: []models.FileDescriptor{
		testutil.File("a.md", "# a"),
		testutil.File("b.pdf", "%PDF"),
		testutil.File("c.markdown", "# c"),
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.md", "c.markdown"}, testutil.Names(f.doc.Input.Files()))
	notices := f.notices.Visible()
	require.Len(t, notices, 1)
	assert.Equal(t, "alert-warning", notices[0].Class)
	assert.Equal(t, "some files were excluded (format or size error)", notices[0].Text)
	require.Len(t, f.got, 1)
	assert.Equal(t, []string{"a.md", "c.markdown"}, testutil.Names(f.got[0]))
}

func TestDrop_AllValidIsSilent(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Handle(Event{Kind: Drop, Files: []models.FileDescriptor{
		testutil.File("a.md", "# a"),
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, f.doc.Input.Len())
	assert.Empty(t, f.notices.Visible())
	assert.Len(t, f.got, 1)
}

func TestDrop_EmptyAndOversizedExcluded(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Handle(Event{Kind: Drop, Files: []models.FileDescriptor{
		testutil.SizedFile("empty.md", 0),
		testutil.SizedFile("huge.md", policy.DefaultMaxFileSize+1),
		testutil.File("ok.md", "# ok"),
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"ok.md"}, testutil.Names(f.doc.Input.Files()))
}

func TestPick_KeepsEverything(t *testing.T) {
	f := newFixture(t)

	results := f.ctrl.Pick([]models.FileDescriptor{
		testutil.File("a.md", "# a"),
		testutil.File("b.pdf", "%PDF"),
	})

	assert.Equal(t, []string{"a.md", "b.pdf"}, testutil.Names(f.doc.Input.Files()))
	require.Len(t, results, 2)
	assert.True(t, results[0].Verdict.OK)
	assert.False(t, results[1].Verdict.OK)
	assert.Equal(t, []string{"disallowed file type"}, results[1].Verdict.Errors)
	assert.Empty(t, f.notices.Visible())
}
