// Package button toggles the busy state of form controls and resets the form.
package button

import (
	"sync"

	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/ui"
)

// Spinner is the markup placed before the busy caption.
const Spinner = `<i class="fas fa-spinner fa-spin me-2"></i>`

// Controller switches buttons between their normal and busy appearance.
type Controller struct {
	caption string
}

// New returns a controller using the catalog's busy caption.
func New(msgs *messages.Catalog) *Controller {
	if msgs == nil {
		msgs = messages.Default(messages.DefaultLocale)
	}
	return &Controller{caption: msgs.Text(messages.BusyCaption)}
}

// BusyLabel is the label shown while a button is busy.
func (c *Controller) BusyLabel() string {
	return Spinner + c.caption
}

// SetBusy disables btn and shows the busy label, or re-enables it and restores the
// label saved when it went busy. A label is only saved if none is saved yet, so two
// busy calls in a row keep the original.
func (c *Controller) SetBusy(btn *ui.Button, busy bool) {
	if busy {
		btn.SetDisabled(true)
		if _, ok := btn.SavedLabel(); !ok {
			label := btn.Label()
			btn.SetSavedLabel(&label)
		}
		btn.SetBusyFlag(true)
		btn.SetLabel(c.BusyLabel())
		return
	}

	btn.SetDisabled(false)
	label := btn.Label()
	if saved, ok := btn.SavedLabel(); ok {
		label = saved
	}
	btn.SetLabel(label)
	btn.SetSavedLabel(nil)
	btn.SetBusyFlag(false)
}

// Hold puts btn in the busy state and returns a function that leaves it. The
// returned function restores the button exactly once however often it is called.
func (c *Controller) Hold(btn *ui.Button) (release func()) {
	c.SetBusy(btn, true)
	var once sync.Once
	return func() {
		once.Do(func() { c.SetBusy(btn, false) })
	}
}

// ResetForm detaches the files, clears the option toggles and hides the preview and
// file list.
func ResetForm(doc *ui.Document) {
	doc.Input.Clear()
	doc.Options.Reset()
	doc.Preview.SetHidden(true)
	doc.FileList.SetHidden(true)
}
