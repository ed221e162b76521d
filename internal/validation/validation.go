package validation

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// Violation codes reported per field.
const (
	Required       = "required"
	InvalidChoice  = "invalid_choice"
	InvalidPhone   = "invalid_phone"
	InvalidEmail   = "invalid_email"
	TooShort       = "too_short"
	Mismatch       = "mismatch"
	MinPasswordLen = 6
)

// Violations maps a field name to the first rule it failed.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// Err converts non-empty violations into a ValidationError.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	details := make(map[string]any, len(v))
	for field, code := range v {
		details[field] = code
	}
	return apperrors.NewValidationError("please correct the highlighted fields", details)
}

func RequireText(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.add(field, Required)
	}
}

var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// NormalizePhone strips separators and an Indian country code or trunk prefix.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	}
	return digits
}

// ValidPhone reports whether raw normalizes to a 10 digit mobile number starting with 6-9.
func ValidPhone(raw string) bool {
	return mobilePattern.MatchString(NormalizePhone(raw))
}

// OptionalPhone validates the phone only when one was supplied.
func OptionalPhone(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if strings.ContainsAny(value, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") || !ValidPhone(value) {
		v.add(field, InvalidPhone)
	}
}

func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.add(field, Required)
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) {
		v.add(field, InvalidEmail)
	}
}

func Password(field, value string, v Violations) {
	if value == "" {
		v.add(field, Required)
		return
	}
	if len(value) < MinPasswordLen {
		v.add(field, TooShort)
	}
}

func Confirmation(field, password, confirm string, v Violations) {
	if password != confirm {
		v.add(field, Mismatch)
	}
}

func Category(field string, value domain.TicketCategory, v Violations) {
	if value == "" {
		v.add(field, Required)
		return
	}
	if !value.Valid() {
		v.add(field, InvalidChoice)
	}
}

func Priority(field string, value domain.TicketPriority, v Violations) {
	if value == "" {
		v.add(field, Required)
		return
	}
	if !value.Valid() {
		v.add(field, InvalidChoice)
	}
}

func Status(field string, value domain.TicketStatus, v Violations) {
	if !value.Valid() {
		v.add(field, InvalidChoice)
	}
}

func Plan(field string, value domain.Plan, v Violations) {
	if value != "" && !value.Valid() {
		v.add(field, InvalidChoice)
	}
}

func Role(field string, value domain.Role, v Violations) {
	if !value.Valid() {
		v.add(field, InvalidChoice)
	}
}

// Registration applies the signup form rules.
func Registration(reg domain.Registration) Violations {
	v := Violations{}
	RequireText("name", reg.Name, v)
	Email("email", reg.Email, v)
	OptionalPhone("phone", reg.Phone, v)
	Password("password", reg.Password, v)
	Confirmation("confirmPassword", reg.Password, reg.ConfirmPassword, v)
	return v
}

// Company applies the company form rules.
func Company(c domain.Company) Violations {
	v := Violations{}
	RequireText("name", c.Name, v)
	if strings.TrimSpace(c.ContactEmail) != "" {
		Email("contactEmail", c.ContactEmail, v)
	}
	OptionalPhone("contactPhone", c.ContactPhone, v)
	Plan("plan", c.Plan, v)
	return v
}
