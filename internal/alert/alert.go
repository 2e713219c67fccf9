// Package alert delivers operational notifications to a chat-ops webhook.
//
// Delivery is best-effort. A Notifier never returns an error and never
// panics past its own boundary; failures are logged and counted.
package alert

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Severity grades an alert.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// Icon returns the chat prefix for s.
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "🚨"
	case SeverityWarn:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Alert is one notification.
type Alert struct {
	Severity Severity
	Title    string
	Message  string
	Fields   map[string]string
}

// Text renders the alert as a single chat message.
func (a Alert) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*", a.Severity.Icon(), a.Title)
	if a.Message != "" {
		b.WriteString("\n")
		b.WriteString(a.Message)
	}

	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n• %s: %s", k, a.Fields[k])
	}
	return b.String()
}

// Notifier sends alerts.
type Notifier interface {
	// Notify schedules delivery and returns immediately.
	Notify(ctx context.Context, a Alert)
	// Wait blocks until scheduled deliveries have finished.
	Wait()
}

// Noop discards alerts. Used when no webhook is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Alert) {}
func (Noop) Wait()                         {}
