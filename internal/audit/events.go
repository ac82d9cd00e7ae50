// Package audit records security-relevant session events: token refreshes,
// refused refresh attempts and logouts. Events go to a dedicated "audit"
// logger so they can be routed separately from request logs.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/shared"
)

// Action names what happened to a session.
type Action string

const (
	ActionRefresh Action = "session.refresh"
	ActionLogout  Action = "session.logout"
)

// Outcome is the result of an action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
)

// Event captures one auditable action. Never put token material in it.
type Event struct {
	Time     time.Time
	Action   Action
	Outcome  Outcome
	Subject  string
	TokenID  string
	Reason   string
	Path     string
	RemoteIP string
}

// Recorder writes events to a structured log.
type Recorder struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder returns a recorder that logs under base.Named("audit").
// A nil base yields a recorder that discards everything.
func NewRecorder(base *zap.Logger) *Recorder {
	if base == nil {
		base = zap.NewNop()
	}
	return &Recorder{logger: base.Named("audit"), now: time.Now}
}

// Record logs e. A zero Time is filled with the current time; the trace id
// bound to ctx, if any, is attached.
func (r *Recorder) Record(ctx context.Context, e Event) {
	if r == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = r.now()
	}

	fields := []zap.Field{
		zap.String("action", string(e.Action)),
		zap.String("outcome", string(e.Outcome)),
		zap.Time("at", e.Time.UTC()),
	}
	if e.Subject != "" {
		fields = append(fields, zap.String("sub", e.Subject))
	}
	if e.TokenID != "" {
		fields = append(fields, zap.String("jti", e.TokenID))
	}
	if e.Reason != "" {
		fields = append(fields, zap.String("reason", e.Reason))
	}
	if e.Path != "" {
		fields = append(fields, zap.String("path", e.Path))
	}
	if e.RemoteIP != "" {
		fields = append(fields, zap.String("remote_ip", e.RemoteIP))
	}
	if id := shared.TraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}

	if e.Outcome == OutcomeDenied {
		r.logger.Warn("audit event", fields...)
		return
	}
	r.logger.Info("audit event", fields...)
}
