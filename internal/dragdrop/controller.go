// Package dragdrop handles files dragged onto the drop zone and files chosen with
// the native picker.
package dragdrop

import (
	"fmt"

	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/notify"
	"github.com/md2xlsx/webui/internal/ui"
)

// HoverClass is set on the drop zone while files hover over it.
const HoverClass = "dragover"

// EventKind is a browser drag event.
type EventKind string

const (
	Enter EventKind = "enter"
	Over  EventKind = "over"
	Leave EventKind = "leave"
	Drop  EventKind = "drop"
)

// State is the hover state of the drop zone.
type State int

const (
	Idle State = iota
	Hovering
)

func (s State) String() string {
	if s == Hovering {
		return "hovering"
	}
	return "idle"
}

// Event is a drag event relayed from the browser. Files is only set for Drop.
type Event struct {
	Kind  EventKind
	Files []models.FileDescriptor
}

// Disposition tells the browser what to do with the native event.
type Disposition struct {
	PreventDefault  bool `json:"preventDefault" msgpack:"preventDefault"`
	StopPropagation bool `json:"stopPropagation" msgpack:"stopPropagation"`
}

// suppress is returned for every drag event so the browser never navigates to a
// dropped file.
var suppress = Disposition{PreventDefault: true, StopPropagation: true}

// Drop outcomes recorded in metrics.
const (
	OutcomeAccepted = "accepted"
	OutcomePartial  = "partial"
	OutcomeRejected = "rejected"
	OutcomeEmpty    = "empty"
)

// PickResult is the verdict for one file selected with the picker.
type PickResult struct {
	File    models.FileDescriptor
	Verdict models.ValidationVerdict
}

// Controller is the drop zone state machine. It runs on the session loop.
type Controller struct {
	doc       *ui.Document
	validator *intake.Validator
	notices   *notify.Queue
	msgs      *messages.Catalog
	metrics   *metrics.Metrics
	onFiles   func([]models.FileDescriptor)
	state     State
}

// Config holds the collaborators of a Controller.
type Config struct {
	Document  *ui.Document
	Validator *intake.Validator
	Notices   *notify.Queue
	Messages  *messages.Catalog
	Metrics   *metrics.Metrics

	// OnFiles, if set, receives the accepted files after a drop.
	OnFiles func([]models.FileDescriptor)
}

// New creates a controller in the Idle state.
func New(cfg Config) *Controller {
	msgs := cfg.Messages
	if msgs == nil {
		msgs = messages.Default(messages.DefaultLocale)
	}
	return &Controller{
		doc:       cfg.Document,
		validator: cfg.Validator,
		notices:   cfg.Notices,
		msgs:      msgs,
		metrics:   cfg.Metrics,
		onFiles:   cfg.OnFiles,
	}
}

// State returns the current hover state.
func (c *Controller) State() State { return c.state }

// Handle processes one drag event.
func (c *Controller) Handle(ev Event) (Disposition, error) {
	switch ev.Kind {
	case Enter, Over:
		c.state = Hovering
		c.doc.DropZone.AddClass(HoverClass)
	case Leave:
		c.state = Idle
		c.doc.DropZone.RemoveClass(HoverClass)
	case Drop:
		c.state = Idle
		c.doc.DropZone.RemoveClass(HoverClass)
		c.drop(ev.Files)
	default:
		return suppress, fmt.Errorf("unknown drag event %q", ev.Kind)
	}
	return suppress, nil
}

func (c *Controller) drop(files []models.FileDescriptor) {
	valid := make([]models.FileDescriptor, 0, len(files))
	for _, f := range files {
		ok := c.validator.Validate(f).OK
		c.metrics.Validation(ok)
		if ok {
			valid = append(valid, f)
		}
	}

	switch {
	case len(valid) == 0:
		if len(files) == 0 {
			c.metrics.Drop(OutcomeEmpty)
		} else {
			c.metrics.Drop(OutcomeRejected)
		}
		c.notices.Error(c.msgs.Text(messages.NoValidFiles))
		return
	case len(valid) < len(files):
		c.metrics.Drop(OutcomePartial)
		c.notices.Warning(c.msgs.Text(messages.FilesExcluded))
	default:
		c.metrics.Drop(OutcomeAccepted)
	}

	c.doc.Input.SetFiles(valid)
	if c.onFiles != nil {
		c.onFiles(valid)
	}
}

// Pick attaches exactly the files chosen with the native picker. Nothing is filtered,
// as the browser attaches whatever the user chose; the verdicts are returned for
// inline display and the submit gate rejects invalid files later.
func (c *Controller) Pick(files []models.FileDescriptor) []PickResult {
	c.doc.Input.SetFiles(files)
	out := make([]PickResult, 0, len(files))
	for _, f := range files {
		v := c.validator.Validate(f)
		c.metrics.Validation(v.OK)
		out = append(out, PickResult{File: f, Verdict: v})
	}
	return out
}
