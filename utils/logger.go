package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ANSI colour codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
	color           = true
)

// SetOutput redirects log lines to w. Colour codes are dropped unless w is stdout.
// It returns a func that restores the previous writer.
func SetOutput(w io.Writer) func() {
	outMu.Lock()
	defer outMu.Unlock()

	prevOut, prevColor := out, color
	out = w
	color = w == os.Stdout
	return func() {
		outMu.Lock()
		defer outMu.Unlock()
		out, color = prevOut, prevColor
	}
}

func ts() string {
	return time.Now().Format("15:04:05")
}

func logf(code, level, format string, a ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()

	if color {
		fmt.Fprintf(out, "%s[%s] %-7s %s%s\n", code, ts(), level, fmt.Sprintf(format, a...), reset)
		return
	}
	fmt.Fprintf(out, "[%s] %-7s %s\n", ts(), level, fmt.Sprintf(format, a...))
}

func Info(format string, a ...interface{}) {
	logf(blue, "[INFO]", format, a...)
}

func Success(format string, a ...interface{}) {
	logf(green, "[OK]", format, a...)
}

func Warn(format string, a ...interface{}) {
	logf(yellow, "[WARN]", format, a...)
}

func Error(format string, a ...interface{}) {
	logf(red, "[ERROR]", format, a...)
}

func Section(title string) {
	outMu.Lock()
	defer outMu.Unlock()

	if color {
		fmt.Fprintf(out, "\n%s[%s] ══════════ %s ══════════%s\n\n", cyan, ts(), title, reset)
		return
	}
	fmt.Fprintf(out, "\n[%s] ══════════ %s ══════════\n\n", ts(), title)
}
