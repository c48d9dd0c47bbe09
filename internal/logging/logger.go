package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It writes JSON to stdout until Init
// is called.
var Logger = logrus.New()

var once sync.Once

// Init configures level and output. When file is set, logs are written to
// both stdout and a rotated file.
func Init(level, file string) {
	once.Do(func() {
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Logger.SetLevel(lvl)

		if file == "" {
			Logger.SetOutput(os.Stdout)
			return
		}

		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		Logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
		Logger.WithField("file", file).Info("logger initialized")
	})
}
