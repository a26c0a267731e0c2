package core

// Logger is any leveled logger service. Implementations may inspect args for
// well-known types (e.g. the logged-in identity) before formatting.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
