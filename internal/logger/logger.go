package logger

import (
	"os"

	"go.uber.org/zap"
)

var base = zap.NewNop()

// Init switches the package logger to JSON output on stdout.
// Until Init is called every call is a no-op.
func Init() {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return
	}
	base = l
	base.Info("logger initialized")
}

// Sync flushes buffered entries.
func Sync() {
	_ = base.Sync()
}

func Info(msg string, fields map[string]any) {
	base.Info(msg, toZap(fields)...)
}

func Warn(msg string, fields map[string]any) {
	base.Warn(msg, toZap(fields)...)
}

func Error(msg string, fields map[string]any) {
	base.Error(msg, toZap(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	base.Error(msg, toZap(fields)...)
	Sync()
	os.Exit(1)
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
