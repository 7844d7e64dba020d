package logging

import "gopkg.in/natefinch/lumberjack.v2"

// newRotatingWriter wraps lumberjack.Logger, which replaces a
// hand-rolled truncate-on-size writer with size/age/backup-count
// rotation and optional gzip compression of rolled files.
func newRotatingWriter(cfg Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
