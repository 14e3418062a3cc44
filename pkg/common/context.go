package common

import (
	"context"

	"go.uber.org/zap"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyUserID    ContextKey = "user_id"
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeySessionID ContextKey = "session_id"
)

// WithUserID adds user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID extracts a non-empty user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	return stringValue(ctx, ContextKeyUserID)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	return stringValue(ctx, ContextKeyRequestID)
}

// WithSessionID marks the context with the editing session a request addresses
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// GetSessionID extracts the editing session ID from context
func GetSessionID(ctx context.Context) (string, bool) {
	return stringValue(ctx, ContextKeySessionID)
}

// LogFields returns the request, user and session ids present in ctx as zap fields
func LogFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if id, ok := GetRequestID(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	if id, ok := GetUserID(ctx); ok {
		fields = append(fields, zap.String("user_id", id))
	}
	if id, ok := GetSessionID(ctx); ok {
		fields = append(fields, zap.String("session_id", id))
	}
	return fields
}

func stringValue(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
