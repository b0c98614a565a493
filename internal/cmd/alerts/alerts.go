// Package alerts prints short status lines for humans, such as the summary
// after a validate run. Alerts go to stderr so stdout stays parseable.
package alerts

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of an alert.
type Level int

const (
	// LevelError indicates a failure.
	LevelError Level = iota
	// LevelWarning indicates a potential issue.
	LevelWarning
	// LevelInfo indicates general information.
	LevelInfo
	// LevelSuccess indicates successful completion.
	LevelSuccess
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the symbol printed in front of the message.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return "❌"
	case LevelWarning:
		return "⚠️"
	case LevelInfo:
		return "ℹ️"
	case LevelSuccess:
		return "✅"
	default:
		return "❓"
	}
}

func (l Level) color() *color.Color {
	switch l {
	case LevelError:
		return color.New(color.FgRed)
	case LevelWarning:
		return color.New(color.FgYellow)
	case LevelSuccess:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

// Alert is one status notification.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates an alert.
func New(level Level, format string, args ...any) *Alert {
	return &Alert{Level: level, Message: fmt.Sprintf(format, args...)}
}

// NewError creates an error alert.
func NewError(format string, args ...any) *Alert { return New(LevelError, format, args...) }

// NewWarning creates a warning alert.
func NewWarning(format string, args ...any) *Alert { return New(LevelWarning, format, args...) }

// NewInfo creates an info alert.
func NewInfo(format string, args ...any) *Alert { return New(LevelInfo, format, args...) }

// NewSuccess creates a success alert.
func NewSuccess(format string, args ...any) *Alert { return New(LevelSuccess, format, args...) }

// WithError attaches the underlying error.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds indented lines printed under the message.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the alert's first line.
func (a *Alert) String() string {
	msg := a.Level.Icon() + " " + a.Message
	if a.Err != nil {
		msg += ": " + a.Err.Error()
	}
	return msg
}

// Writer outputs alerts.
type Writer interface {
	WriteAlert(a *Alert) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(*Alert) error

// WriteAlert calls f.
func (f WriterFunc) WriteAlert(a *Alert) error { return f(a) }

// Discard drops every alert.
var Discard Writer = WriterFunc(func(*Alert) error { return nil })

// NewWriter writes alerts to w, colored by level unless color.NoColor is set.
func NewWriter(w io.Writer) Writer {
	return WriterFunc(func(a *Alert) error {
		if _, err := a.Level.color().Fprintln(w, a.String()); err != nil {
			return err
		}
		if len(a.Details) == 0 {
			return nil
		}
		_, err := io.WriteString(w, "   "+strings.Join(a.Details, "\n   ")+"\n")
		return err
	})
}
