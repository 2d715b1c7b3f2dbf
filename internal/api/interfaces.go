// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/md2xlsx/webui/internal/session"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// PolicyHandler exposes the upload policy to the browser
type PolicyHandler interface {
	HandleGetPolicy(c echo.Context) error
}

// UIHandler serves the UI session WebSocket
type UIHandler interface {
	HandleWebSocket(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Create(send session.Sender) (*session.Session, error)
	Touch(id string) bool
	Close(id string) bool
	Count() int
	Full() bool
}
