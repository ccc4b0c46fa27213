package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/NetPo4ki/go-watcher/record"
	"github.com/NetPo4ki/go-watcher/watcher"
)

// Report summarizes one scenario run.
type Report struct {
	Scenario  string        `json:"scenario" yaml:"scenario"`
	Submitted int           `json:"submitted" yaml:"submitted"`
	Values    int           `json:"values" yaml:"values"`
	Errors    int           `json:"errors" yaml:"errors"`
	Cancelled int           `json:"cancelled" yaml:"cancelled"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Passed    bool          `json:"passed" yaml:"passed"`
	Detail    string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Runner executes scenarios, one Watcher per scenario.
type Runner struct {
	Iterations  int
	StopTimeout time.Duration
	Logger      *zap.Logger
	// Observer returns the observer for a scenario; nil means none.
	Observer func(name string) (watcher.Observer, error)
}

// Run submits sc, stops the Watcher and compares the recorded outcomes with
// the scenario's plan. The error reports infrastructure failures only; a
// scenario that ran but did not meet its plan yields Passed=false.
func (r Runner) Run(ctx context.Context, sc Scenario) (Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	n := r.Iterations
	if n <= 0 {
		n = 1
	}
	opts := []watcher.Option{watcher.WithName(sc.Name), watcher.WithLogger(logger)}
	if r.Observer != nil {
		obs, err := r.Observer(sc.Name)
		if err != nil {
			return Report{}, fmt.Errorf("scenario %s: observer: %w", sc.Name, err)
		}
		if obs != nil {
			opts = append(opts, watcher.WithObserver(obs))
		}
	}

	mem := record.NewMemory[string]()
	reg := record.NewMulti[string](mem, record.NewLog[string](logger.Named("outcomes")))
	w := watcher.New[string](reg, opts...)

	start := time.Now()
	if err := w.Start(ctx); err != nil {
		return Report{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	plan, submitErr := sc.Submit(ctx, w, n)

	stopCtx := context.Background()
	if r.StopTimeout > 0 {
		var cancel context.CancelFunc
		stopCtx, cancel = context.WithTimeout(stopCtx, r.StopTimeout)
		defer cancel()
	}
	stopErr := w.Stop(stopCtx)

	rep := Report{
		Scenario:  sc.Name,
		Submitted: plan.Submitted,
		Values:    len(mem.Values()),
		Errors:    len(mem.Errors()),
		Cancelled: len(mem.Cancelled()),
		Duration:  time.Since(start),
	}
	switch {
	case submitErr != nil:
		rep.Detail = submitErr.Error()
	case stopErr != nil:
		rep.Detail = stopErr.Error()
	case rep.Values != plan.ExpectValues || rep.Errors != plan.ExpectErrors || rep.Cancelled != 0:
		rep.Detail = fmt.Sprintf("expected %d values and %d errors", plan.ExpectValues, plan.ExpectErrors)
	case plan.Verify != nil:
		if err := plan.Verify(); err != nil {
			rep.Detail = err.Error()
			break
		}
		rep.Passed = true
	default:
		rep.Passed = true
	}
	logger.Info("scenario finished",
		zap.String("scenario", sc.Name),
		zap.Int("submitted", rep.Submitted),
		zap.Int("values", rep.Values),
		zap.Int("errors", rep.Errors),
		zap.Int("cancelled", rep.Cancelled),
		zap.Bool("passed", rep.Passed),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// RunAll runs scenarios sequentially, stopping early if ctx is cancelled.
func (r Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]Report, error) {
	reports := make([]Report, 0, len(scenarios))
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("run scenarios: %w", err)
		}
		rep, err := r.Run(ctx, sc)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
