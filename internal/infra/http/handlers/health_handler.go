package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	depHealthy       = "healthy"
	depConfigured    = "configured"
	depNotConfigured = "not configured"
)

// dependencyCheck reports one dependency state. Anything other than the
// three dep* values marks the service as degraded.
type dependencyCheck func(ctx context.Context) string

type HealthHandler struct {
	checks    map[string]dependencyCheck
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler accepts nil dependencies; they are reported as not configured.
func NewHealthHandler(db *sql.DB, rabbitMQ *amqp091.Connection, gatewayConfigured bool) *HealthHandler {
	return &HealthHandler{
		checks: map[string]dependencyCheck{
			"database": databaseCheck(db),
			"rabbitmq": brokerCheck(rabbitMQ),
			"wompi": func(context.Context) string {
				if gatewayConfigured {
					return depConfigured
				}
				return depNotConfigured
			},
		},
		StartTime: time.Now(),
	}
}

func databaseCheck(db *sql.DB) dependencyCheck {
	return func(ctx context.Context) string {
		if db == nil {
			return depNotConfigured
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return "unhealthy: " + err.Error()
		}
		return depHealthy
	}
}

func brokerCheck(conn *amqp091.Connection) dependencyCheck {
	return func(context.Context) string {
		switch {
		case conn == nil:
			return depNotConfigured
		case conn.IsClosed():
			return "unhealthy: connection closed"
		}
		return depHealthy
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       depHealthy,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		state := check(r.Context())
		resp.Dependencies[name] = state
		if state != depHealthy && state != depConfigured && state != depNotConfigured {
			resp.Status = "degraded"
		}
	}

	code := http.StatusOK
	if resp.Status != depHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
