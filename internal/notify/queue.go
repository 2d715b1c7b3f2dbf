// Package notify shows timed, dismissible notifications in the page's notice region.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/md2xlsx/webui/internal/loop"
	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/ui"
)

// AutoDismiss is how long a notification stays before it removes itself.
const AutoDismiss = 5000 * time.Millisecond

type style struct {
	class string
	icon  string
}

var styles = map[models.Severity]style{
	models.SeveritySuccess: {"alert-success", "fa-check-circle"},
	models.SeverityError:   {"alert-danger", "fa-exclamation-triangle"},
	models.SeverityWarning: {"alert-warning", "fa-exclamation-circle"},
	models.SeverityInfo:    {"alert-info", "fa-info-circle"},
}

// Normalize coerces unknown severities to info.
func Normalize(sev models.Severity) models.Severity {
	if _, ok := styles[sev]; ok {
		return sev
	}
	return models.SeverityInfo
}

// Style returns the CSS class and icon for a severity.
func Style(sev models.Severity) (class, icon string) {
	s := styles[Normalize(sev)]
	return s.class, s.icon
}

// Queue is the visible notification stack. It is driven from a single session
// loop and does no locking of its own.
type Queue struct {
	region  *ui.Region
	sched   loop.Scheduler
	msgs    *messages.Catalog
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithMessages sets the catalog used by the error helpers.
func WithMessages(c *messages.Catalog) Option {
	return func(q *Queue) { q.msgs = c }
}

// WithMetrics counts shown notifications.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// WithClock overrides the CreatedAt time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates a queue that inserts into region and schedules removals on sched.
func New(region *ui.Region, sched loop.Scheduler, opts ...Option) *Queue {
	q := &Queue{
		region: region,
		sched:  sched,
		msgs:   messages.Default(messages.DefaultLocale),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Show displays message. With at least one notification visible the new one goes
// directly after the first of them; otherwise it becomes the only entry. After
// AutoDismiss the last entry carrying the same severity class is removed, if any.
func (q *Queue) Show(message string, sev models.Severity) models.Notification {
	sev = Normalize(sev)
	st := styles[sev]

	n := models.Notification{
		ID:        "notice-" + uuid.New().String(),
		Message:   message,
		Severity:  sev,
		CreatedAt: q.now(),
	}
	node := ui.Node{
		ID:    n.ID,
		Class: st.class,
		Icon:  st.icon,
		Text:  message,
		Attrs: map[string]string{"role": "alert", "severity": string(sev)},
	}

	q.region.InsertAfterFirst(node)
	q.metrics.Notification(string(sev))

	q.sched.AfterFunc(AutoDismiss, func() {
		if last := q.region.LastOfClass(st.class); last != nil {
			q.region.Remove(last.ID)
		}
	})
	return n
}

// Dismiss removes a notification early, as the close button does.
func (q *Queue) Dismiss(id string) bool {
	return q.region.Remove(id)
}

// Visible returns the notifications currently displayed, in display order.
func (q *Queue) Visible() []ui.Node {
	return q.region.Nodes()
}

// Success shows a success notification.
func (q *Queue) Success(message string) models.Notification {
	return q.Show(message, models.SeveritySuccess)
}

// Info shows an info notification.
func (q *Queue) Info(message string) models.Notification {
	return q.Show(message, models.SeverityInfo)
}

// Warning shows a warning notification.
func (q *Queue) Warning(message string) models.Notification {
	return q.Show(message, models.SeverityWarning)
}

// Error shows an error notification.
func (q *Queue) Error(message string) models.Notification {
	return q.Show(message, models.SeverityError)
}

// ReportError logs err and shows it as a generic error notification.
func (q *Queue) ReportError(err error, where string) models.Notification {
	fmt.Printf("[UI] Error in %s: %v\n", where, err)
	msg := q.msgs.Text(messages.GenericError)
	if err != nil {
		msg += ": " + err.Error()
	}
	return q.Error(msg)
}

// ReportNetworkError shows the connection trouble notification.
func (q *Queue) ReportNetworkError() models.Notification {
	return q.Error(q.msgs.Text(messages.NetworkError))
}

// ReportFileError shows a failure tied to one file.
func (q *Queue) ReportFileError(name string, err error) models.Notification {
	return q.Error(q.msgs.Format(messages.FileError, name, err))
}
