// Package submit drives a conversion request from the submit click to its feedback.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/md2xlsx/webui/internal/button"
	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/loop"
	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/notify"
	"github.com/md2xlsx/webui/internal/progress"
	"github.com/md2xlsx/webui/internal/remote"
	"github.com/md2xlsx/webui/internal/ui"
)

var (
	// ErrNoFile is returned when submit is pressed with nothing attached.
	ErrNoFile = errors.New("no file attached")

	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("submission in progress")
)

// Progress reported once the file content has been read.
const readPercent = 30

// Converter performs the remote conversion.
type Converter interface {
	Convert(ctx context.Context, req models.ConvertRequest) (*models.ConvertResponse, error)
}

// Outcome is the result of a submission that reached the remote call.
type Outcome struct {
	State    models.SubmissionState
	File     models.FileDescriptor
	Response *models.ConvertResponse // nil when State is Failed
	Err      error
}

// Config holds the collaborators of a Controller.
type Config struct {
	Document  *ui.Document
	Validator *intake.Validator
	Notices   *notify.Queue
	Progress  *progress.Indicator
	Buttons   *button.Controller
	Converter Converter
	Scheduler loop.Scheduler
	Messages  *messages.Catalog
	Metrics   *metrics.Metrics
}

// Controller is the submission state machine of one form. Every method runs on the
// session loop; only the content read and the remote call run elsewhere.
type Controller struct {
	cfg   Config
	msgs  *messages.Catalog
	state models.SubmissionState
	last  models.SubmissionState
}

// New creates an idle controller.
func New(cfg Config) *Controller {
	msgs := cfg.Messages
	if msgs == nil {
		msgs = messages.Default(messages.DefaultLocale)
	}
	if cfg.Buttons == nil {
		cfg.Buttons = button.New(msgs)
	}
	return &Controller{
		cfg:   cfg,
		msgs:  msgs,
		state: models.SubmissionIdle,
		last:  models.SubmissionIdle,
	}
}

// State returns the current state.
func (c *Controller) State() models.SubmissionState { return c.state }

// Last returns the terminal state of the most recent finished submission, or Idle.
func (c *Controller) Last() models.SubmissionState { return c.last }

// Submit starts a submission of the first attached file.
//
// Submissions refused before the remote call return an error synchronously:
// ErrBusy, ErrNoFile or an *intake.ValidationError. Otherwise Submit returns nil and
// done, if set, is called on the loop once the attempt has ended. By then the
// button is being released and the progress bar is completed or gone.
func (c *Controller) Submit(ctx context.Context, done func(Outcome)) error {
	if c.state != models.SubmissionIdle {
		return ErrBusy
	}

	c.state = models.SubmissionValidating
	files := c.cfg.Document.Input.Files()
	if len(files) == 0 {
		c.refuse()
		c.cfg.Notices.Warning(c.msgs.Text(messages.NoFile))
		return ErrNoFile
	}

	file := files[0]
	verdict := c.cfg.Validator.Validate(file)
	c.cfg.Metrics.Validation(verdict.OK)
	if !verdict.OK {
		c.refuse()
		c.cfg.Notices.Error(c.msgs.Format(messages.InvalidFile, file.Name, strings.Join(verdict.Errors, ", ")))
		return &intake.ValidationError{File: file.Name, Errors: verdict.Errors}
	}

	c.state = models.SubmissionSubmitting
	release := c.cfg.Buttons.Hold(c.cfg.Document.Submit)
	c.cfg.Progress.Remove()
	c.cfg.Progress.Create()

	req := models.ConvertRequest{
		ApplyFormatting: c.cfg.Document.Options.Get(ui.OptionApplyFormatting),
		AutoAdjustWidth: c.cfg.Document.Options.Get(ui.OptionAutoAdjustWidth),
	}
	maxSize := c.cfg.Validator.Policy().MaxFileSize()

	go func() {
		data, err := intake.ReadContent(file, maxSize)
		if err != nil {
			c.cfg.Scheduler.Post(func() { c.finish(file, nil, err, release, done) })
			return
		}
		c.cfg.Scheduler.Post(func() { c.cfg.Progress.Update(readPercent) })

		req.MarkdownContent = string(data)
		resp, err := c.cfg.Converter.Convert(ctx, req)
		c.cfg.Scheduler.Post(func() { c.finish(file, resp, err, release, done) })
	}()
	return nil
}

func (c *Controller) refuse() {
	c.state = models.SubmissionIdle
	c.cfg.Metrics.Submission("refused")
}

// finish is the single completion path of a submission that left the loop.
func (c *Controller) finish(file models.FileDescriptor, resp *models.ConvertResponse, err error, release func(), done func(Outcome)) {
	defer release()
	defer func() {
		if r := recover(); r != nil {
			c.state = models.SubmissionIdle
			c.cfg.Progress.Remove()
			c.cfg.Notices.ReportError(fmt.Errorf("%v", r), "submit")
		}
	}()

	out := Outcome{File: file, Response: resp, Err: err}
	var readErr *intake.FileReadError
	switch {
	case errors.As(err, &readErr):
		out.State = models.SubmissionFailed
		c.cfg.Progress.Remove()
		c.cfg.Notices.ReportFileError(file.Name, readErr.Err)
	case err != nil:
		out.State = models.SubmissionFailed
		c.cfg.Progress.Remove()
		c.cfg.Notices.Error(c.msgs.Format(messages.NetworkFailure, err))
	case resp.Success:
		out.State = models.SubmissionSucceeded
		c.cfg.Progress.Complete()
		c.cfg.Notices.Success(c.msgs.Format(messages.Succeeded, resp.TablesFound))
		for _, w := range resp.Warnings {
			c.cfg.Notices.Warning(c.msgs.Format(messages.ServerWarning, w))
		}
	default:
		out.State = models.SubmissionRejected
		c.cfg.Progress.Remove()
		reason := strings.Join(resp.Failures(), ", ")
		if reason == "" {
			reason = c.msgs.Text(messages.GenericError)
		}
		c.cfg.Notices.Error(c.msgs.Format(messages.Rejected, reason))
	}

	fmt.Printf("[Submit] %s: %s\n", file.Name, out.State)
	c.cfg.Metrics.Submission(string(out.State))
	c.last = out.State
	c.state = models.SubmissionIdle

	if done != nil {
		done(out)
	}
}

// IsNetworkError reports whether err came from the transport rather than the server.
func IsNetworkError(err error) bool {
	var netErr *remote.NetworkError
	return errors.As(err, &netErr)
}
