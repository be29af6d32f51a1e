package dto

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RunContext carries the global run parameters every component receives
// explicitly: the deterministic dataset key, the dry-run switch, and the
// per-run correlation ID. The run ID is random on purpose; it tags log
// lines for one invocation and never participates in key derivation.
type RunContext struct {
	DatasetKey string
	DryRun     bool
	RunID      string
	Logger     *logrus.Logger
}

// NewRunContext builds a run context with a fresh correlation ID.
func NewRunContext(datasetKey string, dryRun bool, logger *logrus.Logger) RunContext {
	if logger == nil {
		logger = logrus.New()
	}
	return RunContext{
		DatasetKey: datasetKey,
		DryRun:     dryRun,
		RunID:      uuid.NewString(),
		Logger:     logger,
	}
}

// Log returns the run logger annotated with the run-scoped fields.
func (r RunContext) Log() *logrus.Entry {
	return r.Logger.WithFields(logrus.Fields{
		"dataset_key": r.DatasetKey,
		"run_id":      r.RunID,
	})
}
