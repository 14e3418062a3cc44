// Package notify provides Notifier implementations for editing sessions.
package notify

import (
	"sync"

	"mindmap/application/ports"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("notification", zap.String("level", string(ports.LevelSuccess)), zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn("notification", zap.String("level", string(ports.LevelError)), zap.String("message", message))
}

func (n *LogNotifier) Warning(message string) {
	n.logger.Info("notification", zap.String("level", string(ports.LevelWarning)), zap.String("message", message))
}

// Recorder retains notifications until they are drained
type Recorder struct {
	mu       sync.Mutex
	messages []ports.Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(message string) { r.record(ports.LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.record(ports.LevelError, message) }
func (r *Recorder) Warning(message string) { r.record(ports.LevelWarning, message) }

// Messages returns the retained notifications without clearing them
func (r *Recorder) Messages() []ports.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.Notification, len(r.messages))
	copy(out, r.messages)
	return out
}

// Drain returns the retained notifications and clears them
func (r *Recorder) Drain() []ports.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	if out == nil {
		out = []ports.Notification{}
	}
	return out
}

func (r *Recorder) record(level ports.NotificationLevel, message string) {
	r.mu.Lock()
	r.messages = append(r.messages, ports.Notification{Level: level, Message: message})
	r.mu.Unlock()
}

// Fanout forwards every notification to several sinks.
// Drain is served by the first sink that retains messages.
type Fanout struct {
	sinks []ports.Notifier
}

// NewFanout creates a notifier that forwards to sinks in order
func NewFanout(sinks ...ports.Notifier) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Success(message string) {
	for _, s := range f.sinks {
		s.Success(message)
	}
}

func (f *Fanout) Error(message string) {
	for _, s := range f.sinks {
		s.Error(message)
	}
}

func (f *Fanout) Warning(message string) {
	for _, s := range f.sinks {
		s.Warning(message)
	}
}

// Drain drains the first retaining sink
func (f *Fanout) Drain() []ports.Notification {
	for _, s := range f.sinks {
		if log, ok := s.(ports.NotificationLog); ok {
			return log.Drain()
		}
	}
	return []ports.Notification{}
}
