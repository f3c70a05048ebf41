// Package log defines the narrow logging interface used throughout this
// module, grounded on go-utilpkg/sql/log/core.go's Logger: a small,
// chainable subset of fields-plus-levels, with a Discard zero-value
// implementation so components never need a nil check. The concrete
// backend (Zerolog, in zerolog.go) wraps logiface configured with the
// izerolog writer, grounded on go-utilpkg/sql/log/logrus.go's pattern of
// a thin adapter struct embedding the real logger.
package log

// Logger is the logging interface every component in this module accepts,
// narrow enough that swapping backends (or using Discard in tests) never
// requires touching call sites.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

// Discard implements Logger by doing nothing. Its zero value is ready to
// use, matching sql/log/core.go's Discard.
type Discard struct{}

var _ Logger = Discard{}

func (Discard) WithField(string, any) Logger     { return Discard{} }
func (Discard) WithFields(map[string]any) Logger { return Discard{} }
func (Discard) WithError(error) Logger           { return Discard{} }
func (Discard) Debug(...any)                     {}
func (Discard) Info(...any)                      {}
func (Discard) Warn(...any)                      {}
func (Discard) Error(...any)                     {}
