package logger

import (
	"os"

	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// WailsAdapter routes Wails runtime logs into a Logger
type WailsAdapter struct {
	l Logger
}

var _ wailslogger.Logger = (*WailsAdapter)(nil)

// NewWailsAdapter wraps l for use as options.App.Logger
func NewWailsAdapter(l Logger) *WailsAdapter {
	if l == nil {
		l = NewNop()
	}
	return &WailsAdapter{l: l.With("source", "wails")}
}

func (w *WailsAdapter) Print(message string)   { w.l.Info(message) }
func (w *WailsAdapter) Trace(message string)   { w.l.Debug(message) }
func (w *WailsAdapter) Debug(message string)   { w.l.Debug(message) }
func (w *WailsAdapter) Info(message string)    { w.l.Info(message) }
func (w *WailsAdapter) Warning(message string) { w.l.Warn(message) }
func (w *WailsAdapter) Error(message string)   { w.l.Error(message) }

// Fatal logs and exits, matching the Wails default logger.
func (w *WailsAdapter) Fatal(message string) {
	w.l.Error(message, "fatal", true)
	os.Exit(1)
}
