// Package validator is the schema layer: every document goes through one of
// the Validate* functions before it is written.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var nationalIDRegex = regexp.MustCompile(`^\d{11}$`)

type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation("national_id", validateNationalID); err != nil {
		log.Fatal("Failed to register 'national_id' validator", "error", err)
	}
	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}

	return &Validator{
		validate: v,
		logger:   log,
	}
}

// fieldName reports fields by their json name, or the bson name for fields
// hidden from json.
func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		name = strings.SplitN(fld.Tag.Get("bson"), ",", 2)[0]
	}
	if name == "-" {
		return ""
	}
	return name
}

func validateNationalID(fl validator.FieldLevel) bool {
	return nationalIDRegex.MatchString(fl.Field().String())
}

func validateClock(fl validator.FieldLevel) bool {
	return model.IsClock(fl.Field().String())
}

func (v *Validator) ValidateUser(u *model.User) error {
	if u == nil {
		return apperrors.SchemaViolation(apperrors.Violation{Field: "user", Reason: "document is required"})
	}
	if violations := v.structViolations(u); len(violations) > 0 {
		return apperrors.SchemaViolation(violations...)
	}
	return violationsError(userRules(u))
}

func (v *Validator) ValidateGymnasium(g *model.Gymnasium) error {
	if g == nil {
		return apperrors.SchemaViolation(apperrors.Violation{Field: "gymnasium", Reason: "document is required"})
	}
	if violations := v.structViolations(g); len(violations) > 0 {
		return apperrors.SchemaViolation(violations...)
	}
	return violationsError(gymnasiumRules(g))
}

func (v *Validator) ValidateSport(s *model.Sport) error {
	if s == nil {
		return apperrors.SchemaViolation(apperrors.Violation{Field: "sport", Reason: "document is required"})
	}
	return violationsError(v.structViolations(s))
}

func (v *Validator) ValidateBooking(b *model.Booking) error {
	if b == nil {
		return apperrors.SchemaViolation(apperrors.Violation{Field: "booking", Reason: "document is required"})
	}
	if violations := v.structViolations(b); len(violations) > 0 {
		return apperrors.SchemaViolation(violations...)
	}
	return violationsError(bookingRules(b))
}

func (v *Validator) ValidateEvent(e *model.Event) error {
	if e == nil {
		return apperrors.SchemaViolation(apperrors.Violation{Field: "event", Reason: "document is required"})
	}
	if violations := v.structViolations(e); len(violations) > 0 {
		return apperrors.SchemaViolation(violations...)
	}
	return violationsError(eventRules(e))
}

func (v *Validator) ValidateTicket(t *model.Ticket) error {
	if t == nil {
		return apperrors.SchemaViolation(apperrors.Violation{Field: "ticket", Reason: "document is required"})
	}
	return violationsError(v.structViolations(t))
}

func violationsError(violations []apperrors.Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return apperrors.SchemaViolation(violations...)
}

func (v *Validator) structViolations(doc any) []apperrors.Violation {
	err := v.validate.Struct(doc)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translateValidationErrors(validationErrs)
	}
	v.logger.Error("Unexpected validator failure", "error", err)
	return []apperrors.Violation{{Field: "document", Reason: err.Error()}}
}

func translateValidationErrors(errs validator.ValidationErrors) []apperrors.Violation {
	violations := make([]apperrors.Violation, 0, len(errs))

	for _, err := range errs {
		field := fieldPath(err.Namespace())
		reason := err.Error()

		switch err.Tag() {
		case "required", "required_if":
			reason = "is required"
		case "min":
			reason = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			reason = fmt.Sprintf("must be at most %s", err.Param())
		case "gt":
			reason = fmt.Sprintf("must be greater than %s", err.Param())
		case "oneof":
			reason = fmt.Sprintf("must be one of: %s", err.Param())
		case "email":
			reason = "must be a valid email address"
		case "uuid":
			reason = "must be a valid UUID"
		case "national_id":
			reason = "must be an 11-digit national ID"
		case "hhmm":
			reason = "must be a time of day in HH:MM format"
		}

		violations = append(violations, apperrors.Violation{Field: field, Reason: reason})
	}

	return violations
}

// fieldPath drops the root type name from a validator namespace, so
// "Gymnasium.equipment[0].name" becomes "equipment[0].name".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
