package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/md2xlsx/webui/internal/button"
	"github.com/md2xlsx/webui/internal/dragdrop"
	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/loop"
	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/notify"
	"github.com/md2xlsx/webui/internal/progress"
	"github.com/md2xlsx/webui/internal/storage"
	"github.com/md2xlsx/webui/internal/submit"
	"github.com/md2xlsx/webui/internal/ui"
)

// Message types a session sends to its browser.
const (
	OutPatch       = "patch"
	OutDisposition = "disposition"
	OutResult      = "result"
	OutPreview     = "preview"
	OutError       = "error"
)

// Outbound is a message for the browser.
type Outbound struct {
	Type    string
	ID      string // Echoes the id of the request that caused it, if any
	Payload interface{}
}

// Sender delivers outbound messages. It is called from the session loop only.
type Sender func(Outbound)

// IncomingFile is a file the browser offers. Data is omitted when the browser
// withheld the content, for example because the file exceeds the size limit.
type IncomingFile struct {
	Name     string `json:"name" msgpack:"name"`
	Size     int64  `json:"size" msgpack:"size"`
	Data     string `json:"data,omitempty" msgpack:"data,omitempty"`
	Encoding string `json:"encoding,omitempty" msgpack:"encoding,omitempty"`
}

// PatchBatch carries the patches produced by one loop task.
type PatchBatch struct {
	Patches []ui.Patch `json:"patches" msgpack:"patches"`
}

// ResultPayload reports the end of a submission.
type ResultPayload struct {
	State    models.SubmissionState  `json:"state" msgpack:"state"`
	File     string                  `json:"file" msgpack:"file"`
	Response *models.ConvertResponse `json:"response,omitempty" msgpack:"response,omitempty"`
	Error    string                  `json:"error,omitempty" msgpack:"error,omitempty"`
}

// PreviewPayload is the answer to a preview request.
type PreviewPayload struct {
	Index int    `json:"index" msgpack:"index"`
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Text  string `json:"text,omitempty" msgpack:"text,omitempty"`
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ErrorPayload reports a request the session could not act on.
type ErrorPayload struct {
	Message string `json:"message" msgpack:"message"`
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
}

// Session is the server side of one browser tab: its document, its controllers and
// the loop they all run on.
type Session struct {
	ID        string
	CreatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	loop   *loop.Loop
	sched  loop.Scheduler
	send   Sender

	msgs      *messages.Catalog
	metrics   *metrics.Metrics
	store     *storage.MemoryStore
	validator *intake.Validator
	doc       *ui.Document
	notices   *notify.Queue
	progress  *progress.Indicator
	drag      *dragdrop.Controller
	submit    *submit.Controller

	pending []ui.Patch
}

// flushing runs tasks on the session loop and sends the patches each task made.
type flushing struct{ s *Session }

func (f flushing) Post(fn func()) { f.s.loop.Post(f.s.task(fn)) }

func (f flushing) AfterFunc(d time.Duration, fn func()) func() bool {
	return f.s.loop.AfterFunc(d, f.s.task(fn))
}

func newSession(id string, deps Deps, send Sender) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		loop:      loop.New(64),
		send:      send,
		msgs:      deps.Messages,
		metrics:   deps.Metrics,
		store:     storage.NewMemoryStore(deps.Policy.MaxFileSize()),
		validator: intake.NewValidator(deps.Policy, deps.Messages),
	}
	s.sched = flushing{s}
	s.doc = ui.NewDocument(func(p ui.Patch) { s.pending = append(s.pending, p) })
	s.notices = notify.New(s.doc.Notices, s.sched,
		notify.WithMessages(deps.Messages),
		notify.WithMetrics(deps.Metrics),
	)
	s.progress = progress.New(s.doc.Progress, s.sched, deps.Messages.Text(messages.ProgressLabel))
	buttons := button.New(deps.Messages)
	s.drag = dragdrop.New(dragdrop.Config{
		Document:  s.doc,
		Validator: s.validator,
		Notices:   s.notices,
		Messages:  deps.Messages,
		Metrics:   deps.Metrics,
		OnFiles:   func(files []models.FileDescriptor) { s.showFiles(files, nil) },
	})
	s.submit = submit.New(submit.Config{
		Document:  s.doc,
		Validator: s.validator,
		Notices:   s.notices,
		Progress:  s.progress,
		Buttons:   buttons,
		Converter: deps.Converter,
		Scheduler: s.sched,
		Messages:  deps.Messages,
		Metrics:   deps.Metrics,
	})

	go s.loop.Run(ctx)
	return s
}

func (s *Session) shortID() string {
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

func (s *Session) task(fn func()) func() {
	return func() {
		defer s.flush()
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("[UISession %s] PANIC recovered: %v\n", s.shortID(), r)
			}
		}()
		fn()
	}
}

func (s *Session) post(fn func()) { s.sched.Post(fn) }

func (s *Session) flush() {
	if len(s.pending) == 0 {
		return
	}
	batch := s.pending
	s.pending = nil
	s.metrics.PatchesSent(len(batch))
	s.emit(Outbound{Type: OutPatch, Payload: PatchBatch{Patches: batch}})
}

func (s *Session) emit(msg Outbound) {
	if s.send != nil {
		s.send(msg)
	}
}

// Drag relays a drop zone hover event.
func (s *Session) Drag(reqID string, kind dragdrop.EventKind) {
	s.post(func() { s.handleDrag(reqID, dragdrop.Event{Kind: kind}) })
}

// Drop stages the dropped files and hands them to the drop zone. Staging and pruning
// run in the same loop task so a queued event never loses content to an earlier prune.
func (s *Session) Drop(reqID string, files []IncomingFile) {
	s.post(func() {
		descs := s.stage(files)
		s.handleDrag(reqID, dragdrop.Event{Kind: dragdrop.Drop, Files: descs})
		s.prune()
	})
}

func (s *Session) handleDrag(reqID string, ev dragdrop.Event) {
	d, err := s.drag.Handle(ev)
	if err != nil {
		s.emit(Outbound{Type: OutError, ID: reqID, Payload: ErrorPayload{Message: err.Error(), Code: "INVALID_EVENT"}})
	}
	s.emit(Outbound{Type: OutDisposition, ID: reqID, Payload: d})
}

// Change attaches the files chosen with the native picker.
func (s *Session) Change(files []IncomingFile) {
	s.post(func() {
		descs := s.stage(files)
		results := s.drag.Pick(descs)
		s.showFiles(descs, results)
		s.prune()
	})
}

// SetOption changes a conversion toggle.
func (s *Session) SetOption(reqID, name string, value bool) {
	s.post(func() {
		if !s.doc.Options.Set(name, value) {
			s.emit(Outbound{Type: OutError, ID: reqID, Payload: ErrorPayload{Message: "unknown option: " + name, Code: "INVALID_OPTION"}})
		}
	})
}

// Submit starts a conversion of the attached file.
func (s *Session) Submit(reqID string) {
	s.post(func() {
		err := s.submit.Submit(s.ctx, func(out submit.Outcome) {
			payload := ResultPayload{State: out.State, File: out.File.Name, Response: out.Response}
			if out.Err != nil {
				payload.Error = out.Err.Error()
			}
			s.emit(Outbound{Type: OutResult, ID: reqID, Payload: payload})
		})
		if err != nil {
			fmt.Printf("[UISession %s] Submit refused: %v\n", s.shortID(), err)
		}
	})
}

// Dismiss closes a notification.
func (s *Session) Dismiss(id string) {
	s.post(func() { s.notices.Dismiss(id) })
}

// Preview reads the start of the attached file at index and sends it back.
func (s *Session) Preview(reqID string, index int) {
	s.post(func() {
		files := s.doc.Input.Files()
		if index < 0 || index >= len(files) {
			s.emit(Outbound{Type: OutPreview, ID: reqID, Payload: PreviewPayload{Index: index, Error: "no such file"}})
			return
		}
		f := files[index]
		max := s.validator.Policy().MaxFileSize()
		go func() {
			text, err := intake.Preview(f, max, s.msgs)
			s.post(func() {
				payload := PreviewPayload{Index: index, Name: f.Name, Text: text}
				if err != nil {
					payload.Error = s.msgs.Text(messages.ReadFailed)
					fmt.Printf("[UISession %s] Preview of %s failed: %v\n", s.shortID(), f.Name, err)
				} else {
					s.doc.Preview.SetText(text)
					s.doc.Preview.SetHidden(false)
				}
				s.emit(Outbound{Type: OutPreview, ID: reqID, Payload: payload})
			})
		}()
	})
}

// Reset clears the form.
func (s *Session) Reset() {
	s.post(func() {
		button.ResetForm(s.doc)
		s.prune()
	})
}

// Do runs fn on the session loop and waits for it.
func (s *Session) Do(ctx context.Context, fn func()) error {
	return s.loop.Do(ctx, s.task(fn))
}

// Submission returns the current submission state. It must be called via Do.
func (s *Session) Submission() models.SubmissionState { return s.submit.State() }

// Document returns the session document. It must only be used via Do.
func (s *Session) Document() *ui.Document { return s.doc }

// Close stops the loop, aborts an in-flight conversion and drops staged content.
func (s *Session) Close() {
	s.cancel()
	s.loop.Stop()
	s.store.Clear()
}

// Done is closed when the session has been closed.
func (s *Session) Done() <-chan struct{} { return s.loop.Done() }

func (s *Session) stage(files []IncomingFile) []models.FileDescriptor {
	out := make([]models.FileDescriptor, 0, len(files))
	for _, f := range files {
		fd := models.FileDescriptor{Name: f.Name, Size: f.Size}
		if f.Data != "" {
			info, err := s.store.SaveEncoded(f.Name, f.Data, f.Encoding)
			if err != nil {
				fmt.Printf("[UISession %s] Staging %s failed: %v\n", s.shortID(), f.Name, err)
			} else {
				fd = storage.Descriptor(s.store, info, f.Size)
			}
		}
		out = append(out, fd)
	}
	return out
}

// prune drops staged content no longer attached to the form. Nothing is dropped while
// a submission may still be reading its file.
func (s *Session) prune() {
	if s.submit.State() != models.SubmissionIdle {
		return
	}
	attached := make(map[string]bool)
	for _, f := range s.doc.Input.Files() {
		attached[f.ID] = true
	}
	staged, _ := s.store.List(0)
	for _, info := range staged {
		if !attached[info.ID] {
			s.store.Delete(info.ID)
		}
	}
}

// showFiles lists the attached files with their sizes and any validation errors.
func (s *Session) showFiles(files []models.FileDescriptor, results []dragdrop.PickResult) {
	if len(files) == 0 {
		s.doc.FileList.SetHidden(true)
		return
	}
	lines := make([]string, 0, len(files))
	for i, f := range files {
		line := fmt.Sprintf("%s (%s)", f.Name, intake.FormatSize(f.Size))
		if i < len(results) && !results[i].Verdict.OK {
			line += ": " + strings.Join(results[i].Verdict.Errors, ", ")
		}
		lines = append(lines, line)
	}
	s.doc.FileList.SetText(strings.Join(lines, "\n"))
	s.doc.FileList.SetHidden(false)
}
