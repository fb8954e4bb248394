package logger

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLoggers sets up the shared loggers. Info output rotates in dir via
// lumberjack and mirrors to stdout; errors go to their own rotated file
// and stderr. An empty dir keeps everything on the console only.
func InitLoggers(dir, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	InfoLogger = newLogger(dir, "app.log", os.Stdout, lvl)
	ErrorLogger = newLogger(dir, "error.log", os.Stderr, lvl)
}

func newLogger(dir, name string, console *os.File, lvl logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if dir == "" {
		l.SetOutput(console)
		return l
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	l.SetOutput(console)
	l.AddHook(&writerHook{writer: rotated})
	return l
}

type writerHook struct {
	writer *lumberjack.Logger
}

func (h *writerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}
