package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rule names the validation check that rejected a draft.
type Rule string

const (
	RuleTitleRequired       Rule = "title_required"
	RuleTitleTooLong        Rule = "title_too_long"
	RuleDescriptionRequired Rule = "description_required"
	RuleDescriptionTooLong  Rule = "description_too_long"
	RuleLocationRequired    Rule = "location_required"
	RuleLocationTooLong     Rule = "location_too_long"
	RuleExecutionDatePast   Rule = "execution_date_past"
)

var ruleMessages = map[Rule]string{
	RuleTitleRequired:       "Enter a task title",
	RuleTitleTooLong:        fmt.Sprintf("Title must be at most %d characters", MaxTitleLen),
	RuleDescriptionRequired: "Enter a task description",
	RuleDescriptionTooLong:  fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLen),
	RuleLocationRequired:    "Enter a location",
	RuleLocationTooLong:     fmt.Sprintf("Location must be at most %d characters", MaxLocationLen),
	RuleExecutionDatePast:   "Execution date cannot be in the past",
}

// ValidationError reports the first rule a draft violated.
type ValidationError struct {
	Rule    Rule
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(rule Rule, field string) *ValidationError {
	return &ValidationError{Rule: rule, Field: field, Message: ruleMessages[rule]}
}

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator gates task creation. Now defaults to time.Now.
type Validator struct {
	Now func() time.Time
}

// Validate trims the draft and checks, in order: title, description,
// location, execution date. Only the first failure is returned.
func (v Validator) Validate(d Draft) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)

	// Field order in Draft is the check order; validator walks fields in
	// declaration order and stops each field at its first failing tag.
	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return Draft{}, err
		}
		return Draft{}, fieldError(fieldErrs[0])
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if d.ExecutionDate.Before(now()) {
		return Draft{}, newValidationError(RuleExecutionDatePast, "executionDate")
	}
	return d, nil
}

func fieldError(fe validator.FieldError) error {
	tooLong := fe.Tag() == "max"
	switch fe.Field() {
	case "Title":
		if tooLong {
			return newValidationError(RuleTitleTooLong, "title")
		}
		return newValidationError(RuleTitleRequired, "title")
	case "Description":
		if tooLong {
			return newValidationError(RuleDescriptionTooLong, "description")
		}
		return newValidationError(RuleDescriptionRequired, "description")
	case "Location":
		if tooLong {
			return newValidationError(RuleLocationTooLong, "location")
		}
		return newValidationError(RuleLocationRequired, "location")
	default:
		return fmt.Errorf("validation failed on field '%s': rule '%s'", fe.Field(), fe.Tag())
	}
}
