// Package progress renders the submission progress bar.
package progress

import (
	"math"
	"strconv"
	"time"

	"github.com/md2xlsx/webui/internal/loop"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/ui"
)

// CompleteDelay is how long a completed bar stays at 100% before it disappears.
const CompleteDelay = 1000 * time.Millisecond

// NodeID is the id of the progress container inside the progress region.
const NodeID = "progressContainer"

// Indicator shows a single progress bar in a region. Only one bar per form is
// supported: calling Create again before Remove is a caller error and is not guarded.
type Indicator struct {
	region *ui.Region
	sched  loop.Scheduler
	label  string
	state  models.ProgressState
	stop   func() bool
}

// New returns an indicator for region. label is shown next to the bar.
func New(region *ui.Region, sched loop.Scheduler, label string) *Indicator {
	return &Indicator{region: region, sched: sched, label: label}
}

// Create inserts the bar at 0%, replacing a bar still waiting for its removal.
func (ind *Indicator) Create() {
	ind.cancelRemoval()
	ind.region.Remove(NodeID)
	ind.state = models.ProgressState{Percent: 0, Visible: true}
	ind.region.Append(ui.Node{
		ID:    NodeID,
		Class: "progress-container",
		Text:  "0%",
		Attrs: map[string]string{"percent": "0", "label": ind.label},
	})
}

// Update sets the percentage, clamped to [0, 100] and rounded to the nearest integer.
// It does nothing when no bar is shown.
func (ind *Indicator) Update(percent float64) {
	if !ind.state.Visible {
		return
	}
	p := Clamp(percent)
	ind.state.Percent = p
	ind.region.SetAttr(NodeID, "percent", strconv.Itoa(p))
	ind.region.SetText(NodeID, strconv.Itoa(p)+"%")
}

// Complete shows 100% and removes the bar after CompleteDelay.
func (ind *Indicator) Complete() {
	if !ind.state.Visible {
		return
	}
	ind.Update(100)
	ind.cancelRemoval()
	ind.stop = ind.sched.AfterFunc(CompleteDelay, func() {
		ind.stop = nil
		ind.Remove()
	})
}

// Remove takes the bar away immediately. Removing an absent bar is a no-op.
func (ind *Indicator) Remove() {
	ind.cancelRemoval()
	ind.region.Remove(NodeID)
	ind.state = models.ProgressState{}
}

// State returns the current progress state.
func (ind *Indicator) State() models.ProgressState { return ind.state }

func (ind *Indicator) cancelRemoval() {
	if ind.stop != nil {
		ind.stop()
		ind.stop = nil
	}
}

// Clamp bounds percent to [0, 100] and rounds half away from zero.
func Clamp(percent float64) int {
	if math.IsNaN(percent) || percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return int(math.Round(percent))
}
