package log

import (
	"fmt"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Zerolog adapts a logiface.Logger[*izerolog.Event] (logiface configured
// with the izerolog writer) to this package's narrow Logger interface,
// following go-utilpkg/sql/log/logrus.go's pattern of a one-field wrapper
// struct that re-wraps its return value on every chaining call.
type Zerolog struct {
	l *logiface.Logger[*izerolog.Event]
}

var _ Logger = Zerolog{}

// NewZerolog constructs a Zerolog Logger writing through zl at level lvl.
func NewZerolog(zl zerolog.Logger, lvl logiface.Level) Zerolog {
	return Zerolog{l: logiface.New[*izerolog.Event](
		izerolog.WithZerolog(zl),
		logiface.WithLevel[*izerolog.Event](lvl),
	)}
}

// WithField returns a Zerolog that adds key/value to every subsequent
// event, via logiface.Logger.Clone's Context builder.
func (z Zerolog) WithField(key string, value any) Logger {
	return Zerolog{l: z.l.Clone().Any(key, value).Logger()}
}

// WithFields returns a Zerolog that adds every key/value in fields to
// every subsequent event.
func (z Zerolog) WithFields(fields map[string]any) Logger {
	ctx := z.l.Clone()
	for k, v := range fields {
		ctx = ctx.Any(k, v)
	}
	return Zerolog{l: ctx.Logger()}
}

// WithError returns a Zerolog that attaches err to every subsequent event.
func (z Zerolog) WithError(err error) Logger {
	return Zerolog{l: z.l.Clone().Err(err).Logger()}
}

func (z Zerolog) Debug(args ...any) { z.l.Debug().Log(fmtArgs(args)) }
func (z Zerolog) Info(args ...any)  { z.l.Info().Log(fmtArgs(args)) }
func (z Zerolog) Warn(args ...any)  { z.l.Warning().Log(fmtArgs(args)) }
func (z Zerolog) Error(args ...any) { z.l.Err().Log(fmtArgs(args)) }

// fmtArgs mirrors logrus's convention of joining variadic args with spaces,
// except that a lone string argument is passed through unchanged (the
// common "Info(\"message\")" call shape).
func fmtArgs(args []any) string {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += toString(a)
	}
	return out
}

func toString(a any) string {
	if s, ok := a.(string); ok {
		return s
	}
	if s, ok := a.(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", a)
}
