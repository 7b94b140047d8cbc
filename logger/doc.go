// Package logger provides structured logging backed by zerolog.
//
// A process-wide logger is initialized once from config; components derive
// tagged child loggers from it:
//
//	logger.Init(cfg.Logging)
//	log := logger.WithComponent("transcriber")
//	log.Info("engine ready", logger.Fields("model", "large-v3"))
package logger
