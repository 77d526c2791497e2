package logger

import (
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
)

// HCLogAdapter bridges this package's Logger interface to hclog.Logger so
// components that expect a hashicorp-style sink (the recovery coordinator's
// optional diagnostic output) can share the same underlying logger as the
// rest of the engine.
type HCLogAdapter struct {
	name string
	log  Logger
}

// NewHCLogAdapter wraps log as an hclog.Logger named name.
func NewHCLogAdapter(name string, log Logger) hclog.Logger {
	return &HCLogAdapter{name: name, log: log}
}

func (a *HCLogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		a.Debug(msg, args...)
	case hclog.Warn:
		a.Warn(msg, args...)
	case hclog.Error:
		a.Error(msg, args...)
	default:
		a.Info(msg, args...)
	}
}

func (a *HCLogAdapter) fields(args []interface{}) []Field {
	fields := make([]Field, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, String(key, toString(args[i+1])))
	}
	return fields
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return ""
}

func (a *HCLogAdapter) Trace(msg string, args ...interface{}) { a.Debug(msg, args...) }
func (a *HCLogAdapter) Debug(msg string, args ...interface{}) { a.log.Debug(msg, a.fields(args)...) }
func (a *HCLogAdapter) Info(msg string, args ...interface{})  { a.log.Info(msg, a.fields(args)...) }
func (a *HCLogAdapter) Warn(msg string, args ...interface{})  { a.log.Warn(msg, a.fields(args)...) }
func (a *HCLogAdapter) Error(msg string, args ...interface{}) { a.log.Error(msg, a.fields(args)...) }

func (a *HCLogAdapter) IsTrace() bool { return true }
func (a *HCLogAdapter) IsDebug() bool { return true }
func (a *HCLogAdapter) IsInfo() bool  { return true }
func (a *HCLogAdapter) IsWarn() bool  { return true }
func (a *HCLogAdapter) IsError() bool { return true }

func (a *HCLogAdapter) ImpliedArgs() []interface{} { return nil }

func (a *HCLogAdapter) With(args ...interface{}) hclog.Logger {
	return &HCLogAdapter{name: a.name, log: a.log.WithFields(a.fields(args)...)}
}

func (a *HCLogAdapter) Name() string { return a.name }

func (a *HCLogAdapter) Named(name string) hclog.Logger {
	if a.name == "" {
		return &HCLogAdapter{name: name, log: a.log}
	}
	return &HCLogAdapter{name: a.name + "." + name, log: a.log}
}

func (a *HCLogAdapter) ResetNamed(name string) hclog.Logger {
	return &HCLogAdapter{name: name, log: a.log}
}

func (a *HCLogAdapter) SetLevel(hclog.Level) {}

func (a *HCLogAdapter) GetLevel() hclog.Level { return hclog.Info }

func (a *HCLogAdapter) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(a.StandardWriter(opts), "", 0)
}

func (a *HCLogAdapter) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return io.Discard
}
