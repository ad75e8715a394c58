package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthEventLogger records authentication and admission events to an
// external sink. Implementations should be non-blocking and best-effort;
// a failed audit write never fails the request.
type AuthEventLogger interface {
	LogLogin(ctx context.Context, email, method, ip, userAgent string) error
	LogAdminAccess(ctx context.Context, email, path string, granted bool) error
	LogRateLimited(ctx context.Context, clientKey, path string) error
}

// LogrusAuthEvents writes audit events as structured log lines, tagging
// each with a unique event id so downstream collectors can dedupe.
type LogrusAuthEvents struct {
	Log logrus.FieldLogger
}

// NewLogrusAuthEvents builds an audit logger over log (the standard logger
// when nil).
func NewLogrusAuthEvents(log logrus.FieldLogger) *LogrusAuthEvents {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusAuthEvents{Log: log}
}

func (a *LogrusAuthEvents) entry() *logrus.Entry {
	return a.Log.WithField("event_id", uuid.NewString())
}

func (a *LogrusAuthEvents) LogLogin(_ context.Context, email, method, ip, userAgent string) error {
	a.entry().WithFields(logrus.Fields{
		"event":      "login",
		"email":      email,
		"method":     method,
		"ip":         ip,
		"user_agent": userAgent,
	}).Info("auth: login")
	return nil
}

func (a *LogrusAuthEvents) LogAdminAccess(_ context.Context, email, path string, granted bool) error {
	a.entry().WithFields(logrus.Fields{
		"event":   "admin_access",
		"email":   email,
		"path":    path,
		"granted": granted,
	}).Info("auth: admin access")
	return nil
}

func (a *LogrusAuthEvents) LogRateLimited(_ context.Context, clientKey, path string) error {
	a.entry().WithFields(logrus.Fields{
		"event": "rate_limited",
		"key":   clientKey,
		"path":  path,
	}).Warn("auth: rate limited")
	return nil
}

// NopAuthEvents discards every event.
type NopAuthEvents struct{}

func (NopAuthEvents) LogLogin(context.Context, string, string, string, string) error { return nil }
func (NopAuthEvents) LogAdminAccess(context.Context, string, string, bool) error     { return nil }
func (NopAuthEvents) LogRateLimited(context.Context, string, string) error           { return nil }
