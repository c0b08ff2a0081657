package config

import (
	"context"
	"fmt"
	"time"

	"github.com/dcshock/conduit/conduit"
)

// Pipeline is a built pipeline: a name plus the fused conduit for its
// stages. Conduit values are immutable step trees, so a built pipeline can
// be run any number of times.
type Pipeline struct {
	Name    string
	Conduit conduit.Conduit[any, any]
}

// Run drives the pipeline against src, calling each for every output.
func (p *Pipeline) Run(ctx context.Context, src conduit.Iterator[any], each func(ctx context.Context, out any) error, opts *conduit.RunOptions) error {
	if opts != nil && opts.Name == "" {
		o := *opts
		o.Name = p.Name
		opts = &o
	}
	_, err := conduit.Run(ctx, src, p.Conduit, each, opts)
	return err
}

// Collect runs the pipeline against src and returns all outputs.
func (p *Pipeline) Collect(ctx context.Context, src conduit.Iterator[any], opts *conduit.RunOptions) ([]any, error) {
	var outs []any
	err := p.Run(ctx, src, func(_ context.Context, out any) error {
		outs = append(outs, out)
		return nil
	}, opts)
	return outs, err
}

// BuildPipeline builds a Pipeline from config and registry by fusing the
// named stages in order. Stage names in config must be registered.
func BuildPipeline(reg *Registry, cfg *PipelineConfig) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	chain := conduit.Identity[any]()
	for i, ref := range cfg.Stages {
		if ref.Name == "" {
			return nil, fmt.Errorf("stage %d: name required", i)
		}
		stage, ok := reg.Get(ref.Name)
		if !ok {
			return nil, fmt.Errorf("stage %d: %q not in registry", i, ref.Name)
		}
		stage, err := wrapStage(stage, ref)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%q): %w", i, ref.Name, err)
		}
		if i == 0 {
			chain = stage
			continue
		}
		chain = conduit.Fuse(chain, stage)
	}
	return &Pipeline{Name: cfg.Name, Conduit: chain}, nil
}

func wrapStage(s conduit.Conduit[any, any], ref StageRef) (conduit.Conduit[any, any], error) {
	if ref.Timeout > 0 {
		s = conduit.WithTimeout(s, ref.Timeout.Duration())
	}
	switch ref.Retry {
	case "":
		return s, nil
	case "fixed":
		initial := ref.Initial.Duration()
		if initial <= 0 {
			initial = time.Second
		}
		policy := conduit.RetryPolicy{
			MaxAttempts: ref.MaxAttempts,
			Backoff:     initial,
			ShouldRetry: conduit.IsRetryable,
		}
		return conduit.WithRetry(s, policy), nil
	default:
		return nil, fmt.Errorf("retry %q not supported (use \"fixed\")", ref.Retry)
	}
}

// BuildAllPipelines builds a Pipeline for each entry in multi. Keys are
// pipeline names. If a pipeline config's Name is empty, the map key is used
// as the pipeline name.
func BuildAllPipelines(reg *Registry, multi *MultiPipelineConfig) (map[string]*Pipeline, error) {
	if multi == nil {
		return nil, fmt.Errorf("MultiPipelineConfig is nil")
	}
	out := make(map[string]*Pipeline, len(multi.Pipelines))
	for name, cfg := range multi.Pipelines {
		if cfg.Name == "" {
			cfg.Name = name
		}
		p, err := BuildPipeline(reg, &cfg)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}
