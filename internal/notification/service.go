package notification

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Success shows a success toast.
func Success(n Notifier, message string) {
	n.Notify(New(SeveritySuccess, message))
}

// Error shows an error toast.
func Error(n Notifier, message string) {
	n.Notify(New(SeverityError, message))
}

// DefaultFeedCapacity bounds the toasts kept while nobody drains the feed.
const DefaultFeedCapacity = 50

// Feed buffers notifications until the presentation layer drains them.
// When full, the oldest notification is dropped.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
}

// NewFeed creates a feed holding at most capacity notifications.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{capacity: capacity}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, n)
}

// Drain returns the buffered notifications, oldest first, and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Len reports how many notifications are waiting.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// LogNotifier writes every notification to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notification")}
}

func (l *LogNotifier) Notify(n Notification) {
	fields := []zap.Field{zap.String("id", n.ID.String()), zap.String("message", n.Message)}
	if n.Severity == SeverityError {
		l.logger.Warn("Error notification", fields...)
		return
	}
	l.logger.Info("Success notification", fields...)
}

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
