// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package notify carries the transient user-facing messages ("toasts") that state
operations emit.

A [Collector] is attached to every request by the middleware chain. Stores and
controllers emit through a [Notifier]; the default [Request] notifier routes to
the collector found in the context, and respond writes the collected messages
into the JSON envelope under "notifications".
*/
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxkey"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
)

// Category is the visual kind of a notification.
type Category string

const (
	CategorySuccess Category = "success"
	CategoryError   Category = "error"
	CategoryInfo    Category = "info"
)

// Notification is a single message shown to the user.
type Notification struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
}

// Success builds a success notification.
func Success(title, description string) Notification {
	return Notification{Category: CategorySuccess, Title: title, Description: description}
}

// Error builds an error notification.
func Error(title, description string) Notification {
	return Notification{Category: CategoryError, Title: title, Description: description}
}

// Info builds an informational notification.
func Info(title, description string) Notification {
	return Notification{Category: CategoryInfo, Title: title, Description: description}
}

// Notifier receives notifications emitted by state operations.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// # Request-scoped collection

// Collector accumulates notifications for one request. Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// All returns a copy of the collected notifications in emission order.
func (c *Collector) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// WithCollector attaches a fresh [Collector] to ctx.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	collector := &Collector{}
	return context.WithValue(ctx, ctxkey.KeyNotices, collector), collector
}

// FromContext returns the collector attached to ctx, or nil.
func FromContext(ctx context.Context) *Collector {
	collector, _ := ctx.Value(ctxkey.KeyNotices).(*Collector)
	return collector
}

type requestNotifier struct{}

// Request is the [Notifier] that delivers to the collector of the current
// request. Outside a request the notification is only logged.
var Request Notifier = requestNotifier{}

func (requestNotifier) Notify(ctx context.Context, n Notification) {
	if collector := FromContext(ctx); collector != nil {
		collector.Notify(ctx, n)
		return
	}
	ctxutil.GetLogger(ctx).DebugContext(ctx, "notification_without_collector",
		slog.String("category", string(n.Category)),
		slog.String("title", n.Title),
	)
}
