package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditSignInSuccess      AuditEvent = "signin_success"
	AuditSignInFailure      AuditEvent = "signin_failure"
	AuditAccountCreated     AuditEvent = "account_created"
	AuditSignOut            AuditEvent = "signout"
	AuditRateLimited        AuditEvent = "rate_limited"
	AuditSessionRevoked     AuditEvent = "session_revoked"
	AuditAccessTokenMinted  AuditEvent = "access_token_minted"
	AuditPostCreated        AuditEvent = "post_created"
	AuditPostUpdated        AuditEvent = "post_updated"
	AuditPostDeleted        AuditEvent = "post_deleted"
	AuditPostsMassModerated AuditEvent = "posts_mass_moderated"
	AuditUserUpdated        AuditEvent = "user_updated"
	AuditUserDeleted        AuditEvent = "user_deleted"
	AuditRoleChanged        AuditEvent = "role_changed"
	AuditRestrictionChanged AuditEvent = "restriction_changed"
	AuditPreferencesUpdated AuditEvent = "preferences_updated"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)

	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logEvent is a convenience for events with a user ID.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, userID string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("user_id", userID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logFailure logs a rejected request.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}
