package observer

import (
	"context"

	"github.com/rs/zerolog"
)

// LogObserver logs run lifecycle via zerolog: run start and finish at info
// level (errors at error level) and each emitted output at debug level.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver returns an observer that writes to log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// RunStarted implements conduit.Observer.
func (o *LogObserver) RunStarted(ctx context.Context, runID, name string) error {
	o.log.Info().
		Str("run_id", runID).
		Str("pipeline", name).
		Msg("run started")
	return nil
}

// OutputEmitted implements conduit.Observer.
func (o *LogObserver) OutputEmitted(ctx context.Context, runID string, index int, value any) error {
	o.log.Debug().
		Str("run_id", runID).
		Int("index", index).
		Interface("value", value).
		Msg("output emitted")
	return nil
}

// RunFinished implements conduit.Observer.
func (o *LogObserver) RunFinished(ctx context.Context, runID string, result any, err error) error {
	if err != nil {
		o.log.Error().
			Str("run_id", runID).
			Err(err).
			Msg("run failed")
		return nil
	}
	o.log.Info().
		Str("run_id", runID).
		Msg("run finished")
	return nil
}
