package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
)

// 项目统一的日志包装，底层是 slog；方法签名 msg + 键值对
type Logger struct {
	l *slog.Logger
}

// Init 按环境创建日志器：prod 输出 JSON 且只记录 info 以上，其余环境输出文本并打开 debug
func Init(env string) *Logger {
	return New(os.Stdout, env)
}

// New 写到指定输出，测试里传 bytes.Buffer
func New(w io.Writer, env string) *Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return &Logger{l: slog.New(h)}
}

// With 返回带固定字段的子日志器
func (l *Logger) With(kvs ...interface{}) *Logger {
	return &Logger{l: l.l.With(kvs...)}
}

func (l *Logger) Info(msg string, kvs ...interface{}) {
	l.l.Info(msg, kvs...)
}

func (l *Logger) Debug(msg string, kvs ...interface{}) {
	l.l.Debug(msg, kvs...)
}

func (l *Logger) Warn(msg string, kvs ...interface{}) {
	l.l.Warn(msg, kvs...)
}

func (l *Logger) Error(msg string, kvs ...interface{}) {
	l.l.Error(msg, kvs...)
}

func (l *Logger) Fatal(msg string, kvs ...interface{}) {
	l.l.Error(msg, kvs...)
	os.Exit(1)
}

// StdLog 适配标准库 *log.Logger（如 http.Server.ErrorLog），按 error 级别输出
func (l *Logger) StdLog() *log.Logger {
	return slog.NewLogLogger(l.l.Handler(), slog.LevelError)
}

func (l *Logger) Sync() error { return nil }
