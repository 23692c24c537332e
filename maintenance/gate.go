// Package maintenance decides, once per application mount, whether the
// protected application tree may render or the maintenance notice must take
// its place.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/hennalash/go-client/api"
	"github.com/hennalash/go-client/logger"
)

// Status is the operator-controlled maintenance flag as reported by the
// backend.
type Status struct {
	InMaintenance bool       `json:"is_maintenance"`
	Message       string     `json:"message"`
	EnabledAt     *time.Time `json:"enabled_at,omitempty"`
	EnabledBy     string     `json:"enabled_by,omitempty"`
}

// State is the gate decision.
type State int

const (
	// StateChecking is the initial state: the status fetch has not resolved.
	StateChecking State = iota
	// StateOperational renders the app: not in maintenance, or the status
	// fetch failed (fail-open: a transient outage never blocks the site).
	StateOperational
	// StateBlocked replaces the app with the maintenance notice.
	StateBlocked
	// StateBypassed renders the app despite maintenance: the session is an
	// authenticated admin.
	StateBypassed
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateOperational:
		return "operational"
	case StateBlocked:
		return "blocked"
	case StateBypassed:
		return "bypassed"
	}
	return "unknown"
}

// AdminSession reports whether the current session is an authenticated
// admin. *auth.Store satisfies it.
type AdminSession interface {
	IsAdmin() bool
}

// Gate fetches the maintenance status once and holds the decision for its
// lifetime. The decision is deliberately not re-polled: surprise blocking
// mid-interaction is worse than serving a stale flag for one session.
// Refetch is the manual escape hatch.
type Gate struct {
	client  *api.Client
	session AdminSession
	logger  logger.Logger

	mu      sync.Mutex
	state   State
	status  Status
	checked bool
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger. Defaults to a console logger.
func WithLogger(l logger.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// NewGate returns a gate in the Checking state.
func NewGate(client *api.Client, session AdminSession, opts ...GateOption) *Gate {
	g := &Gate{client: client, session: session, state: StateChecking}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.NewConsoleLogger()
	}
	g.logger = g.logger.WithPrefix("maintenance")
	return g
}

// Check resolves the gate decision, fetching the status on the first call
// only; later calls return the settled state without touching the network.
func (g *Gate) Check(ctx context.Context) State {
	g.mu.Lock()
	if g.checked {
		defer g.mu.Unlock()
		return g.state
	}
	g.mu.Unlock()
	return g.Refetch(ctx)
}

// Refetch bypasses the fetch-once policy and re-evaluates the decision.
func (g *Gate) Refetch(ctx context.Context) State {
	var status Status
	state := StateOperational
	if err := g.client.Get(ctx, "/api/maintenance", &status); err != nil {
		// Fail-open: blocking the whole site on a transient status-check
		// failure would be strictly worse for availability.
		g.logger.Warn("status check failed, treating as operational: %v", err)
		status = Status{}
	} else if status.InMaintenance {
		if g.session != nil && g.session.IsAdmin() {
			state = StateBypassed
		} else {
			state = StateBlocked
		}
	}

	g.mu.Lock()
	g.state = state
	g.status = status
	g.checked = true
	g.mu.Unlock()
	g.logger.Debug("gate decision: %s", state)
	return state
}

// State returns the settled decision, or StateChecking before the first
// Check resolves.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Status returns the last fetched maintenance status.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Allow reports whether the protected tree may render.
func (g *Gate) Allow() bool {
	switch g.State() {
	case StateOperational, StateBypassed:
		return true
	}
	return false
}

type togglePayload struct {
	InMaintenance bool   `json:"is_maintenance"`
	Message       string `json:"message"`
}

// Toggle flips the server-side maintenance flag (admin-only endpoint) and
// updates the local status copy on success. The gate decision itself is not
// re-evaluated; call Refetch for that.
func (g *Gate) Toggle(ctx context.Context, enabled bool, message string) (Status, error) {
	var status Status
	if err := g.client.Post(ctx, "/api/maintenance", togglePayload{InMaintenance: enabled, Message: message}, &status); err != nil {
		return Status{}, err
	}
	g.mu.Lock()
	g.status = status
	g.mu.Unlock()
	g.logger.Info("maintenance mode set to %t", enabled)
	return status, nil
}
