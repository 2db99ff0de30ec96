package questiongen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks a generated question before it leaves the engine.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs,
	// e.g. "structural", "answer".
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regenerating is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

var structTags = validator.New(validator.WithRequiredStructEnabled())

// StructuralValidator checks field presence, lengths and the four
// distinct non-empty options using the struct tags on Question.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	err := structTags.Struct(q)
	if err == nil {
		return nil
	}
	var msgs []string
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	} else {
		msgs = append(msgs, err.Error())
	}
	return &ValidationError{
		Validator: v.Name(),
		Message:   strings.Join(msgs, "; "),
		Retryable: true,
	}
}

// AnswerValidator checks that the correct answer is exactly one of the
// options.
type AnswerValidator struct{}

func (v *AnswerValidator) Name() string { return "answer" }

func (v *AnswerValidator) Validate(q *Question) *ValidationError {
	if !slices.Contains(q.Options, q.Correct) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct answer %q is not among the options", q.Correct),
			Retryable: true,
		}
	}
	return nil
}

// runValidators returns the first failure in order, or nil.
func runValidators(vs []Validator, q *Question) *ValidationError {
	for _, v := range vs {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}
