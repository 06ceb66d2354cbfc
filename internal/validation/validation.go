// Package validation holds the pre-submit checks for console forms.
//
// Validators are pure: they take a form snapshot and return every violation
// that applies, in a fixed order, so the form can show the complete list at
// once. An empty result means the form may be submitted.
package validation

import dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"

// Violations is the ordered list of messages blocking a submission.
type Violations []string

// OK reports whether the form is submittable.
func (v Violations) OK() bool {
	return len(v) == 0
}

// Contains reports whether msg is among the violations.
func (v Violations) Contains(msg string) bool {
	for _, m := range v {
		if m == msg {
			return true
		}
	}
	return false
}

// Err converts a non-empty result into a validation failure. It returns nil
// when there is nothing to report.
func (v Violations) Err() error {
	if v.OK() {
		return nil
	}
	return dErrors.Validation("form rejected", v)
}

func (v *Violations) check(ok bool, msg string) {
	if !ok {
		*v = append(*v, msg)
	}
}
