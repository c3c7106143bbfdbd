package events

import (
	"context"
	"log"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a short user-facing message about a finished mutation.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// HubNotifier publishes notifications to SSE subscribers and logs them.
type HubNotifier struct {
	Hub       *Hub
	RequestID func(context.Context) string
}

func (h HubNotifier) Notify(ctx context.Context, n Notification) {
	reqID := ""
	if h.RequestID != nil {
		reqID = h.RequestID(ctx)
	}
	lvl := "info"
	if n.Level == LevelError {
		lvl = "warn"
	}
	log.Printf("level=%s msg=%q request_id=%s kind=notification", lvl, n.Message, reqID)
	if h.Hub != nil {
		h.Hub.Publish(MakeEvent(reqID, TypeNotification, 1, n))
	}
}

// RecordsChanged tells subscribers to re-fetch the list.
func (h HubNotifier) RecordsChanged(ctx context.Context, op string) {
	if h.Hub == nil {
		return
	}
	reqID := ""
	if h.RequestID != nil {
		reqID = h.RequestID(ctx)
	}
	h.Hub.Publish(MakeEvent(reqID, TypeRecords, 1, map[string]string{"op": op}))
}
