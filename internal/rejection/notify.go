package rejection

import "time"

// Kind classifies a user-visible notification.
type Kind int

const (
	Success Kind = iota
	Failure
)

func (k Kind) String() string {
	if k == Failure {
		return "failure"
	}
	return "success"
}

// DefaultNotificationDuration is how long a notification stays visible when
// no duration is configured.
const DefaultNotificationDuration = 5 * time.Second

// Notification messages.
const (
	SuccessTitle   = "Document rejected"
	SuccessMessage = "The document has been successfully rejected."
	FailureTitle   = "Error"
	FailureMessage = "An error occurred while rejecting the document. Please try again."

	// Sent when the terminal action fails after the upstream accepted the rejection.
	DispatchFailureTitle   = "Rejection recorded"
	DispatchFailureMessage = "The document was rejected, but we could not continue automatically. You can close this page."
)

// Notification is a fire-and-forget message with a bounded display duration.
type Notification struct {
	Kind     Kind
	Title    string
	Message  string
	Duration time.Duration
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(kind Kind, title, message string, duration time.Duration)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(kind Kind, title, message string, duration time.Duration) {
	f(Notification{Kind: kind, Title: title, Message: message, Duration: duration})
}
