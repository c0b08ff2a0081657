package conduit

import "context"

// Observer provides hooks around a pipeline run so you can log or record its
// progress. RunStarted is called before the stage is driven, OutputEmitted
// after each delivered output (with its 0-based index), and RunFinished when
// the run ends (result is nil when the run failed or was stopped early).
//
// A hook returning an error aborts the run; the run's scope still unwinds.
type Observer interface {
	RunStarted(ctx context.Context, runID, name string) error
	OutputEmitted(ctx context.Context, runID string, index int, value any) error
	RunFinished(ctx context.Context, runID string, result any, err error) error
}

type multiObserver []Observer

// MultiObserver combines observers into one that calls each in order,
// stopping at the first error.
func MultiObserver(obs ...Observer) Observer {
	return multiObserver(obs)
}

func (m multiObserver) RunStarted(ctx context.Context, runID, name string) error {
	for _, o := range m {
		if err := o.RunStarted(ctx, runID, name); err != nil {
			return err
		}
	}
	return nil
}

func (m multiObserver) OutputEmitted(ctx context.Context, runID string, index int, value any) error {
	for _, o := range m {
		if err := o.OutputEmitted(ctx, runID, index, value); err != nil {
			return err
		}
	}
	return nil
}

func (m multiObserver) RunFinished(ctx context.Context, runID string, result any, err error) error {
	for _, o := range m {
		if hookErr := o.RunFinished(ctx, runID, result, err); hookErr != nil {
			return hookErr
		}
	}
	return nil
}
