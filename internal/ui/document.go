// Package ui models the host page the intake controllers drive: a drop zone, a file
// input, a submit button, option toggles and the regions notifications and progress
// are inserted into.
//
// Every mutation is reported as a Patch to the document's sink so a thin browser
// client can mirror it. The document is not safe for concurrent use; it belongs to
// one session loop.
package ui

import (
	"sort"

	"github.com/md2xlsx/webui/internal/models"
)

// Element ids used by the host page.
const (
	IDNotifications = "notifications"
	IDProgress      = "progressArea"
	IDDropZone      = "dropZone"
	IDFileInput     = "fileInput"
	IDSubmit        = "submitButton"
	IDPreview       = "previewCard"
	IDFileList      = "fileList"
)

// Option names understood by the conversion endpoint.
const (
	OptionApplyFormatting = "apply_formatting"
	OptionAutoAdjustWidth = "auto_adjust_width"
)

// Sink receives document patches in the order they happen.
type Sink func(Patch)

// Document is the in-memory page of one UI session.
type Document struct {
	Notices  *Region
	Progress *Region
	DropZone *Element
	Input    *FileInput
	Submit   *Button
	Preview  *Element
	FileList *Element
	Options  *Options

	sink Sink
}

// NewDocument builds the standard conversion form. sink may be nil.
func NewDocument(sink Sink) *Document {
	d := &Document{sink: sink}
	d.Notices = &Region{id: IDNotifications, doc: d}
	d.Progress = &Region{id: IDProgress, doc: d}
	d.DropZone = newElement(d, IDDropZone)
	d.Preview = newElement(d, IDPreview)
	d.FileList = newElement(d, IDFileList)
	d.Input = &FileInput{id: IDFileInput, doc: d}
	d.Submit = &Button{Element: newElement(d, IDSubmit), label: "Convert"}
	d.Options = &Options{doc: d, values: map[string]bool{
		OptionApplyFormatting: false,
		OptionAutoAdjustWidth: false,
	}}
	return d
}

// SetSink replaces the patch receiver.
func (d *Document) SetSink(sink Sink) { d.sink = sink }

func (d *Document) emit(p Patch) {
	if d.sink != nil {
		d.sink(p)
	}
}

// Element is a single addressable element.
type Element struct {
	id      string
	classes map[string]struct{}
	hidden  bool
	text    string
	doc     *Document
}

func newElement(d *Document, id string) *Element {
	return &Element{id: id, classes: make(map[string]struct{}), doc: d}
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// AddClass adds a CSS class. Adding a present class emits nothing.
func (e *Element) AddClass(class string) {
	if _, ok := e.classes[class]; ok {
		return
	}
	e.classes[class] = struct{}{}
	e.doc.emit(Patch{Op: OpAddClass, Target: e.id, Value: class})
}

// RemoveClass removes a CSS class. Removing an absent class emits nothing.
func (e *Element) RemoveClass(class string) {
	if _, ok := e.classes[class]; !ok {
		return
	}
	delete(e.classes, class)
	e.doc.emit(Patch{Op: OpRemoveClass, Target: e.id, Value: class})
}

// HasClass reports whether class is set.
func (e *Element) HasClass(class string) bool {
	_, ok := e.classes[class]
	return ok
}

// SetHidden shows or hides the element.
func (e *Element) SetHidden(hidden bool) {
	e.hidden = hidden
	e.doc.emit(Patch{Op: OpSetHidden, Target: e.id, Flag: hidden})
}

// Hidden reports whether the element is hidden.
func (e *Element) Hidden() bool { return e.hidden }

// SetText replaces the element text.
func (e *Element) SetText(text string) {
	e.text = text
	e.doc.emit(Patch{Op: OpSetText, Target: e.id, Value: text})
}

// Text returns the element text.
func (e *Element) Text() string { return e.text }

// Button is a submit control. Its label is markup.
type Button struct {
	*Element
	disabled bool
	label    string
	saved    *string
	busy     bool
}

// Label returns the current label markup.
func (b *Button) Label() string { return b.label }

// SetLabel replaces the label markup.
func (b *Button) SetLabel(label string) {
	b.label = label
	b.doc.emit(Patch{Op: OpSetHTML, Target: b.id, Value: label})
}

// Disabled reports whether the control is disabled.
func (b *Button) Disabled() bool { return b.disabled }

// SetDisabled enables or disables the control.
func (b *Button) SetDisabled(disabled bool) {
	b.disabled = disabled
	b.doc.emit(Patch{Op: OpSetDisabled, Target: b.id, Flag: disabled})
}

// SavedLabel returns the label stored when the button went busy.
func (b *Button) SavedLabel() (string, bool) {
	if b.saved == nil {
		return "", false
	}
	return *b.saved, true
}

// SetSavedLabel stores label; nil clears it. This is data on the element, not visible.
func (b *Button) SetSavedLabel(label *string) { b.saved = label }

// SetBusyFlag records the busy state on the element.
func (b *Button) SetBusyFlag(busy bool) { b.busy = busy }

// State returns the button's busy state.
func (b *Button) State() models.ButtonState {
	return models.ButtonState{Busy: b.busy, SavedLabel: b.saved}
}

// FileInput holds the files attached to the form.
type FileInput struct {
	id    string
	files []models.FileDescriptor
	doc   *Document
}

// Files returns a copy of the attached files.
func (in *FileInput) Files() []models.FileDescriptor {
	return append([]models.FileDescriptor(nil), in.files...)
}

// Len returns the number of attached files.
func (in *FileInput) Len() int { return len(in.files) }

// SetFiles replaces the attached files with exactly files, in order.
func (in *FileInput) SetFiles(files []models.FileDescriptor) {
	in.files = append([]models.FileDescriptor(nil), files...)
	refs := make([]FileRef, 0, len(files))
	for _, f := range files {
		refs = append(refs, FileRef{ID: f.ID, Name: f.Name, Size: f.Size})
	}
	in.doc.emit(Patch{Op: OpSetFiles, Target: in.id, Files: refs})
}

// Clear detaches all files.
func (in *FileInput) Clear() { in.SetFiles(nil) }

// Options are the boolean conversion toggles of the form.
type Options struct {
	values map[string]bool
	doc    *Document
}

// Set changes a toggle. Unknown names are ignored and reported as false.
func (o *Options) Set(name string, value bool) bool {
	if _, ok := o.values[name]; !ok {
		return false
	}
	o.values[name] = value
	o.doc.emit(Patch{Op: OpSetChecked, Target: name, Flag: value})
	return true
}

// Get returns a toggle value.
func (o *Options) Get(name string) bool { return o.values[name] }

// Reset clears every toggle.
func (o *Options) Reset() {
	names := make([]string, 0, len(o.values))
	for name := range o.values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.Set(name, false)
	}
}
