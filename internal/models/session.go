package models

// SubmissionState represents where a form is in its submit round trip.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionValidating SubmissionState = "validating"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionSucceeded  SubmissionState = "succeeded"
	SubmissionRejected   SubmissionState = "rejected" // response received, conversion failed
	SubmissionFailed     SubmissionState = "failed"
)

// Terminal reports whether the state ends a submission attempt.
func (s SubmissionState) Terminal() bool {
	return s == SubmissionSucceeded || s == SubmissionRejected || s == SubmissionFailed
}

// ProgressState is the visible progress affordance of an active submission.
type ProgressState struct {
	Percent int  `json:"percent"` // 0-100
	Visible bool `json:"visible"`
}

// ButtonState is the busy state stored on a submit control.
type ButtonState struct {
	Busy       bool    `json:"busy"`
	SavedLabel *string `json:"savedLabel,omitempty"`
}
