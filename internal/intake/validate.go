// Package intake decides whether a file offered by the user may be converted.
//
// The Validator is the single acceptance rule for every input path: files dropped on
// the drop zone, files picked with the native chooser and the file attached at submit
// time all go through Validate.
package intake

import (
	"fmt"
	"strings"

	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/policy"
)

// ValidationError carries the verdict errors of a rejected file.
type ValidationError struct {
	File   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, strings.Join(e.Errors, ", "))
}

// Validator checks FileDescriptors against a Policy. It has no state besides its
// configuration and is safe to share.
type Validator struct {
	policy policy.Policy
	msgs   *messages.Catalog
}

// NewValidator creates a validator. A nil catalog selects the English texts.
func NewValidator(p policy.Policy, msgs *messages.Catalog) *Validator {
	if msgs == nil {
		msgs = messages.Default(messages.DefaultLocale)
	}
	return &Validator{policy: p, msgs: msgs}
}

// Policy returns the policy the validator enforces.
func (v *Validator) Policy() policy.Policy { return v.policy }

// Validate runs every rule and accumulates errors in a fixed order:
// type, size ceiling, emptiness.
func (v *Validator) Validate(f models.FileDescriptor) models.ValidationVerdict {
	errs := []string{}

	if !v.policy.Allows(Suffix(f.Name)) {
		errs = append(errs, v.msgs.Text(messages.DisallowedType))
	}
	if f.Size > v.policy.MaxFileSize() {
		errs = append(errs, v.msgs.Format(messages.TooLarge, FormatSize(v.policy.MaxFileSize())))
	}
	if f.Size <= 0 {
		errs = append(errs, v.msgs.Text(messages.Empty))
	}

	return models.ValidationVerdict{OK: len(errs) == 0, Errors: errs}
}

// Check is Validate returning a *ValidationError for rejected files.
func (v *Validator) Check(f models.FileDescriptor) error {
	verdict := v.Validate(f)
	if verdict.OK {
		return nil
	}
	return &ValidationError{File: f.Name, Errors: verdict.Errors}
}

// Partition splits files into accepted and rejected, keeping their order.
func (v *Validator) Partition(files []models.FileDescriptor) (valid, invalid []models.FileDescriptor) {
	for _, f := range files {
		if v.Validate(f).OK {
			valid = append(valid, f)
		} else {
			invalid = append(invalid, f)
		}
	}
	return valid, invalid
}

// Suffix returns the lower-cased suffix of name including the dot, or "" when the
// name has no dot.
func Suffix(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i:])
}
