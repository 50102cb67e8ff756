package workflow

import "log"

// Level is the severity of a notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notice is a short operator-facing message about an action outcome
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives action outcomes
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to the standard logger
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	switch n.Level {
	case LevelSuccess:
		log.Printf("✅ %s", n.Message)
	case LevelError:
		log.Printf("❌ %s", n.Message)
	case LevelWarning:
		log.Printf("⚠️ %s", n.Message)
	default:
		log.Printf("ℹ️ %s", n.Message)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
