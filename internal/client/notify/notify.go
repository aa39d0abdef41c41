// Package notify turns outcomes into short user-facing messages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/form"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

// Kind is the notification category.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

const (
	msgGeneric     = "Something went wrong, please try again"
	msgUnavailable = "The server is unreachable, check your connection"
	msgSignIn      = "Your session has expired, please log in again"
)

// Describe renders err for the user: the server message when the backend
// supplied one, field messages for validation failures, otherwise a generic
// text.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.HasMessage() {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return msgSignIn
	case errors.Is(err, client.ErrUnavailable):
		return msgUnavailable
	}
	return msgGeneric
}

// Notifier prints notifications. Errors are also logged with full detail.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	logger logging.Logger
	dark   func() bool
}

func NewNotifier(out io.Writer, logger logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Notifier{out: out, logger: logger}
}

// UseTheme makes the notifier pick its prefix style from dark.
func (n *Notifier) UseTheme(dark func() bool) {
	n.mu.Lock()
	n.dark = dark
	n.mu.Unlock()
}

func (n *Notifier) Notify(kind Kind, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%s %s\n", n.prefix(kind), fmt.Sprintf(format, args...))
}

func (n *Notifier) Success(format string, args ...any) { n.Notify(Success, format, args...) }
func (n *Notifier) Info(format string, args ...any)    { n.Notify(Info, format, args...) }

// Failure reports err under a short action description.
func (n *Notifier) Failure(ctx context.Context, action string, err error) {
	n.logger.Error(ctx, action+" failed", "error", err)
	n.Notify(Error, "%s: %s", action, Describe(err))
}

func (n *Notifier) prefix(kind Kind) string {
	dark := n.dark != nil && n.dark()
	switch kind {
	case Success:
		if dark {
			return "[ok]"
		}
		return "✔"
	case Error:
		if dark {
			return "[error]"
		}
		return "✖"
	default:
		if dark {
			return "[info]"
		}
		return "•"
	}
}
