package logger

import (
	"os"

	logger "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var L = &logger.Logger{
	Out:   os.Stderr,
	Level: logger.InfoLevel,
	Formatter: &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	},
	Hooks: make(logger.LevelHooks),
}

func SetLevel(level string) error {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	L.SetLevel(lvl)
	return nil
}
