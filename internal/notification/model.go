package notification

import (
	"time"

	"github.com/google/uuid"
)

// Severity defines how a notification is presented.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one transient toast shown to the user.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// New stamps a notification with an ID and creation time.
func New(severity Severity, message string) Notification {
	return Notification{
		ID:        uuid.New(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
}
