package client

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger 日志接口
//
// args 为交替的 key/value 对（与 slog 风格一致）。
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// zerologLogger 基于 zerolog 的默认日志实现
type zerologLogger struct {
	log zerolog.Logger
}

// NewLogger 创建输出到 stderr 的默认日志器
func NewLogger() Logger {
	return NewLoggerWithWriter(os.Stderr)
}

// NewLoggerWithWriter 创建输出到指定 writer 的日志器
func NewLoggerWithWriter(w io.Writer) Logger {
	return &zerologLogger{
		log: zerolog.New(w).With().Timestamp().Str("component", "resourcehub-sdk").Logger(),
	}
}

func (l *zerologLogger) Debug(msg string, args ...interface{}) {
	l.event(l.log.Debug(), msg, args)
}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	l.event(l.log.Info(), msg, args)
}

func (l *zerologLogger) Warn(msg string, args ...interface{}) {
	l.event(l.log.Warn(), msg, args)
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	l.event(l.log.Error(), msg, args)
}

// event 将交替的 key/value 参数写入 zerolog 事件
func (l *zerologLogger) event(e *zerolog.Event, msg string, args []interface{}) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}

// nopLogger 空日志实现（测试用）
type nopLogger struct{}

// NewNopLogger 创建不输出任何内容的日志器
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
