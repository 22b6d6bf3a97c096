package listview

import (
	"errors"

	"fintrack/internal/api"
)

// Level grades a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows transient messages.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

const msgNetwork = "Network error, please try again"

// Message extracts the text shown to the user for err: the server's message
// when there is one.
func Message(err error) string {
	var apiErr *api.APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, api.ErrTransport):
		return msgNetwork
	}
	return err.Error()
}
