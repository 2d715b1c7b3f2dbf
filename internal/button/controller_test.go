package button

import (
	"testing"

	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/testutil"
	"github.com/md2xlsx/webui/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBusy_RoundTrip(t *testing.T) {
	doc := ui.NewDocument(nil)
	c := New(nil)
	btn := doc.Submit

	c.SetBusy(btn, true)
	assert.True(t, btn.Disabled())
	assert.True(t, btn.State().Busy)
	assert.Equal(t, Spinner+"Processing...", btn.Label())
	saved, ok := btn.SavedLabel()
	require.True(t, ok)
	assert.Equal(t, "Convert", saved)

	c.SetBusy(btn, false)
	assert.False(t, btn.Disabled())
	assert.False(t, btn.State().Busy)
	assert.Equal(t, "Convert", btn.Label())
	_, ok = btn.SavedLabel()
	assert.False(t, ok)
}

func TestSetBusy_TwiceKeepsOriginalLabel(t *testing.T) {
	doc := ui.NewDocument(nil)
	c := New(nil)

	c.SetBusy(doc.Submit, true)
	c.SetBusy(doc.Submit, true)
	c.SetBusy(doc.Submit, false)

	assert.Equal(t, "Convert", doc.Submit.Label())
}

func TestSetBusy_IdleWithoutSavedLabel(t *testing.T) {
	doc := ui.NewDocument(nil)
	c := New(nil)

	doc.Submit.SetLabel("Go")
	doc.Submit.SetDisabled(true)
	c.SetBusy(doc.Submit, false)

	assert.False(t, doc.Submit.Disabled())
	assert.Equal(t, "Go", doc.Submit.Label())
}

func TestHold_ReleasesOnce(t *testing.T) {
	var disabled []bool
	doc := ui.NewDocument(func(p ui.Patch) {
		if p.Op == ui.OpSetDisabled {
			disabled = append(disabled, p.Flag)
		}
	})
	c := New(messages.Default("ja"))

	release := c.Hold(doc.Submit)
	assert.Equal(t, Spinner+"処理中...", doc.Submit.Label())

	release()
	release()

	assert.Equal(t, []bool{true, false}, disabled)
	assert.Equal(t, "Convert", doc.Submit.Label())
}

func TestResetForm(t *testing.T) {
	doc := ui.NewDocument(nil)
	doc.Input.SetFiles([]models.FileDescriptor{testutil.File("a.md", "# a"), testutil.File("b.md", "# b")})
	doc.Options.Set(ui.OptionApplyFormatting, true)
	doc.Preview.SetHidden(false)
	doc.FileList.SetHidden(false)

	ResetForm(doc)

	assert.Equal(t, 0, doc.Input.Len())
	assert.False(t, doc.Options.Get(ui.OptionApplyFormatting))
	assert.True(t, doc.Preview.Hidden())
	assert.True(t, doc.FileList.Hidden())
}
