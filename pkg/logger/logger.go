package logger

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger.
var Log = logrus.New()

// Init configures the shared logger from LOG_LEVEL and APP_ENV.
// Production gets plain JSON; anything else keeps logrus defaults readable.
func Init() {
	Log.SetOutput(os.Stdout)
	Log.SetReportCaller(true)

	if os.Getenv("APP_ENV") == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
			},
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
			},
		})
	}

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}
}
