package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"contact-gateway-server/pkg/models"
)

// Validation failure reasons. The messages are the client-facing error
// strings returned verbatim in the 400 response body.
var (
	ErrInvalidPayload = errors.New("Invalid payload.")
	ErrMissingFields  = errors.New("Missing required fields.")
	ErrInvalidEmail   = errors.New("Invalid email address.")
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// Deliberately loose: one or more non-whitespace-non-@ runs around a
	// single @, with a dot in the domain part. Deliverability is the
	// upstream system's problem.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Sanitize coerces any decoded JSON value to text (nil becomes the
// empty string), trims it, collapses each whitespace run to a single
// space, and truncates to maxLen characters. Total over all inputs and
// idempotent: sanitizing a sanitized value is a no-op.
func Sanitize(value interface{}, maxLen int) string {
	s := stringify(value)
	s = whitespaceRun.ReplaceAllString(s, " ")

	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	// Trim after truncation as well, so a cut at a word boundary cannot
	// leave a trailing space.
	return trimSpaces(s)
}

func trimSpaces(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

// stringify renders a decoded JSON value the way a form client would
// have sent it: numbers without exponent notation, composites as JSON.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// SubmissionValidator turns a raw decoded body into a ValidatedPayload
// or a rejection reason.
type SubmissionValidator struct {
	validate *validator.Validate
}

// NewSubmissionValidator creates a validator with the contact_email
// rule registered.
func NewSubmissionValidator() *SubmissionValidator {
	v := validator.New()

	// Register custom validation for the email shape
	v.RegisterValidation("contact_email", validateEmailShape) //nolint:errcheck

	return &SubmissionValidator{validate: v}
}

func validateEmailShape(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

// ValidateSubmission sanitizes and validates the six submission fields.
// raw is the decoded JSON body; anything that is not an object fails
// with ErrInvalidPayload. No network or storage access.
func (v *SubmissionValidator) ValidateSubmission(raw interface{}) (*models.ValidatedPayload, error) {
	body, ok := raw.(map[string]interface{})
	if !ok || body == nil {
		return nil, ErrInvalidPayload
	}

	payload := &models.ValidatedPayload{
		RequestID: Sanitize(body["requestId"], models.MaxRequestIDLength),
		Name:      Sanitize(body["name"], models.MaxNameLength),
		Email:     Sanitize(body["email"], models.MaxEmailLength),
		Subject:   Sanitize(body["subject"], models.MaxSubjectLength),
		Message:   Sanitize(body["message"], models.MaxMessageLength),
		Timestamp: Sanitize(body["timestamp"], models.MaxTimestampLength),
	}

	if payload.RequestID == "" || payload.Name == "" || payload.Email == "" ||
		payload.Subject == "" || payload.Message == "" || payload.Timestamp == "" {
		return nil, ErrMissingFields
	}

	// The sanitizer already bounds lengths and the empty checks cover
	// required, so the only rule that can still fail is contact_email.
	if err := v.validate.Struct(payload); err != nil {
		return nil, ErrInvalidEmail
	}

	return payload, nil
}
