package app

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kipparis/cooking-notebook/internal/logging"
)

// Run is the state of a single CLI invocation. Every logger handed out by a
// Run carries its run_id.
type Run struct {
	ID     string
	Config Config
	Log    *zap.Logger

	closeLog func() error
}

func NewRun(cfg Config) (*Run, error) {
	log, closeLog, err := logging.New(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		JSON:  cfg.Log.JSON,
	})
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &Run{
		ID:       id,
		Config:   cfg,
		Log:      log.With(zap.String("run_id", id)),
		closeLog: closeLog,
	}, nil
}

// DBPath is the configured database path, or the per-user default.
func (r *Run) DBPath() (string, error) {
	if r.Config.DBPath != "" {
		return r.Config.DBPath, nil
	}
	return DefaultDBPath()
}

// Close flushes the logger. It is safe to call more than once.
func (r *Run) Close() error {
	if r.closeLog == nil {
		return nil
	}
	err := r.closeLog()
	r.closeLog = nil
	return err
}
