// Package logger is the structured logging layer of graphkit, built on
// zerolog.
//
// Loggers are scoped by component: the execution core logs under
// "traversal", the bulk loader under "graphson". Fields travel as plain maps
// so call sites never touch zerolog types:
//
//	log := logger.New(&cfg.Logging, "graphkit").WithComponent("graphson")
//	log.Info("graphson load completed", logger.Fields(logger.FieldCount, n))
//
// Tests capture output with NewWithWriter and silence it with NewNop.
package logger
