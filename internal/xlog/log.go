// Package xlog is the engine's leveled logger: a small Message interface
// (text or JSON rendering) fed through a single goroutine that owns
// stdout, so concurrent run-generation/merge workers never interleave
// partial lines. Modeled on the reference project's own logger package.
package xlog

import (
	"fmt"
	"log"
	"os"

	"github.com/skiby7/parallel-external-mergesort/atomic"
)

// Level is a logger severity. Debug through Error are ordered least to
// most severe; Success sorts above Error, so success lines pass every
// level filter.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "+"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "#"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a CLI -log value to a Level, defaulting to LevelInfo
// for anything unrecognized.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warning":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger serializes concurrent log calls onto stdout through a buffered
// channel drained by one goroutine.
type Logger struct {
	out    chan string
	done   chan struct{}
	impl   *log.Logger
	level  Level
	asJSON bool
	closed atomic.Bool
}

// New starts a Logger at the given level. Close must be called before
// process exit to drain any buffered lines.
func New(level Level, jsonMode bool) *Logger {
	l := &Logger{
		out:    make(chan string, 10000),
		done:   make(chan struct{}),
		impl:   log.New(os.Stdout, "", 0),
		level:  level,
		asJSON: jsonMode,
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer close(l.done)
	for line := range l.out {
		l.impl.Println(line)
	}
}

// Close flushes and stops the logger. Safe to call more than once; only
// the first call closes the underlying channel.
func (l *Logger) Close() {
	if l.closed.Get() {
		return
	}
	l.closed.Set(true)
	close(l.out)
	<-l.done
}

func (l *Logger) render(level Level, msg Message) string {
	if l.asJSON {
		return msg.JSON()
	}
	switch level {
	case LevelError, LevelWarning:
		return fmt.Sprintf("%v %v", level, msg.String())
	default:
		return fmt.Sprintf("                   %v %v", level, msg.String())
	}
}

func (l *Logger) log(level Level, msg Message) {
	if level < l.level {
		return
	}
	l.out <- l.render(level, msg)
}

func (l *Logger) Debug(msg Message)   { l.log(LevelDebug, msg) }
func (l *Logger) Info(msg Message)    { l.log(LevelInfo, msg) }
func (l *Logger) Success(msg Message) { l.log(LevelSuccess, msg) }
func (l *Logger) Warning(msg Message) { l.log(LevelWarning, msg) }
func (l *Logger) Error(msg Message)   { l.log(LevelError, msg) }
