package domain

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// AudienceSelector picks the customers a broadcast goes to.
// The zero value selects nobody and fails validation.
type AudienceSelector struct {
	All      bool
	Category string
}

func AudienceAll() AudienceSelector { return AudienceSelector{All: true} }

func AudienceCategory(tag string) AudienceSelector {
	return AudienceSelector{Category: strings.TrimSpace(tag)}
}

// ParseAudience maps the wire value of targetType: "all" or a category tag.
func ParseAudience(targetType string) AudienceSelector {
	t := strings.TrimSpace(targetType)
	if strings.EqualFold(t, "all") {
		return AudienceAll()
	}
	return AudienceCategory(t)
}

func (a AudienceSelector) IsZero() bool { return !a.All && a.Category == "" }

// String is the value stored in notifications.target_type.
func (a AudienceSelector) String() string {
	if a.All {
		return "all"
	}
	return a.Category
}

type BroadcastRequest struct {
	Message     string
	Audience    AudienceSelector
	RequestedBy int64
	CreatedAt   time.Time
}

func (r BroadcastRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrMessageRequired
	}
	if r.Audience.IsZero() {
		return ErrAudienceRequired
	}
	return nil
}

type Recipient struct {
	Destination string
	Category    string
}

type OutcomeStatus string

const (
	OutcomeSent   OutcomeStatus = "sent"
	OutcomeFailed OutcomeStatus = "failed"
)

type DispatchOutcome struct {
	Recipient string
	Status    OutcomeStatus
	Error     string
}

type DispatchSummary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// BuildSummary counts outcomes by status. Total is always Sent+Failed.
func BuildSummary(outcomes []DispatchOutcome) DispatchSummary {
	var s DispatchSummary
	for _, o := range outcomes {
		if o.Status == OutcomeSent {
			s.Sent++
		} else {
			s.Failed++
		}
	}
	s.Total = s.Sent + s.Failed
	return s
}

var (
	ErrValidation         = errors.New("validation failed")
	ErrMessageRequired    = validationError("message and targetType are required")
	ErrAudienceRequired   = validationError("message and targetType are required")
	ErrAuditPersistence   = errors.New("notification audit write failed")
	ErrAudienceResolution = errors.New("audience resolution failed")
	ErrGatewayNotReady    = errors.New("messaging gateway not ready")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = validationError("email already exists")
)

type valErr struct{ msg string }

func (e *valErr) Error() string        { return e.msg }
func (e *valErr) Is(target error) bool { return target == ErrValidation }

func validationError(msg string) error { return &valErr{msg: msg} }

// NewValidationError returns an error matching ErrValidation with a client-facing message.
func NewValidationError(msg string) error { return validationError(msg) }
