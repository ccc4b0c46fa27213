// Package scenario defines the demo workloads run by watchdemo and the runner
// that drives them through a watcher.Watcher.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/NetPo4ki/go-watcher/watcher"
)

const ball = "⚽"

// ErrUnknownScenario is returned by Lookup for unregistered names.
var ErrUnknownScenario = errors.New("unknown scenario")

// Plan describes what a scenario submitted and what it expects to be recorded.
type Plan struct {
	Submitted    int
	ExpectValues int
	ExpectErrors int
	// Verify runs after Stop for checks that live outside the Registrator.
	Verify func() error
}

// Scenario is a named workload.
type Scenario struct {
	Name        string
	Description string
	Submit      func(ctx context.Context, w *watcher.Watcher[string], n int) (Plan, error)
}

var registry = map[string]Scenario{
	"single": {
		Name:        "single",
		Description: "one work item returning a value",
		Submit:      submitSingle,
	},
	"mixed": {
		Name:        "mixed",
		Description: "n work items, every third fails",
		Submit:      submitMixed,
	},
	"pingpong": {
		Name:        "pingpong",
		Description: "two work items alternating n times over capacity-1 channels",
		Submit:      submitPingPong,
	},
	"pipeline": {
		Name:        "pipeline",
		Description: "n chained stages passing one value, fed by the caller",
		Submit:      submitPipeline,
	},
}

// Lookup returns the scenario registered under name.
func Lookup(name string) (Scenario, error) {
	sc, ok := registry[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return sc, nil
}

// Names lists registered scenarios in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve expands "all" to every scenario; any other name resolves to itself.
func Resolve(name string) ([]Scenario, error) {
	if name != "all" {
		sc, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		return []Scenario{sc}, nil
	}
	out := make([]Scenario, 0, len(registry))
	for _, n := range Names() {
		out = append(out, registry[n])
	}
	return out, nil
}

func submitSingle(_ context.Context, w *watcher.Watcher[string], _ int) (Plan, error) {
	if err := w.StartAndWatch(func(context.Context) (string, error) { return "true", nil }); err != nil {
		return Plan{}, fmt.Errorf("submit single: %w", err)
	}
	return Plan{Submitted: 1, ExpectValues: 1}, nil
}

func submitMixed(_ context.Context, w *watcher.Watcher[string], n int) (Plan, error) {
	plan := Plan{}
	for i := 0; i < n; i++ {
		i := i
		fail := i%3 == 2
		err := w.StartAndWatch(func(context.Context) (string, error) {
			if fail {
				return "", fmt.Errorf("item %d failed", i)
			}
			return fmt.Sprintf("item %d", i), nil
		})
		if err != nil {
			return plan, fmt.Errorf("submit mixed item %d: %w", i, err)
		}
		plan.Submitted++
		if fail {
			plan.ExpectErrors++
		} else {
			plan.ExpectValues++
		}
	}
	return plan, nil
}

func send(ctx context.Context, ch chan<- string, v string) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func recv(ctx context.Context, ch <-chan string) (string, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func submitPingPong(_ context.Context, w *watcher.Watcher[string], n int) (Plan, error) {
	ping := make(chan string, 1)
	pong := make(chan string, 1)

	pinger := func(ctx context.Context) (string, error) {
		for i := 0; i < n; i++ {
			if err := send(ctx, pong, ball); err != nil {
				return "", err
			}
			if _, err := recv(ctx, ping); err != nil {
				return "", err
			}
		}
		return "pinger", nil
	}
	ponger := func(ctx context.Context) (string, error) {
		for i := 0; i < n; i++ {
			if _, err := recv(ctx, pong); err != nil {
				return "", err
			}
			if err := send(ctx, ping, ball); err != nil {
				return "", err
			}
		}
		return "ponger", nil
	}
	for _, work := range []watcher.WorkItem[string]{pinger, ponger} {
		if err := w.StartAndWatch(work); err != nil {
			return Plan{}, fmt.Errorf("submit pingpong: %w", err)
		}
	}
	return Plan{Submitted: 2, ExpectValues: 2}, nil
}

func submitPipeline(ctx context.Context, w *watcher.Watcher[string], n int) (Plan, error) {
	chans := make([]chan string, n+1)
	for i := range chans {
		chans[i] = make(chan string, 1)
	}
	for i := 0; i < n; i++ {
		in, out, stage := chans[i], chans[i+1], i
		err := w.StartAndWatch(func(ctx context.Context) (string, error) {
			v, err := recv(ctx, in)
			if err != nil {
				return "", err
			}
			if err := send(ctx, out, v); err != nil {
				return "", err
			}
			return fmt.Sprintf("stage %d", stage), nil
		})
		if err != nil {
			return Plan{}, fmt.Errorf("submit pipeline stage %d: %w", i, err)
		}
	}
	if err := send(ctx, chans[0], ball); err != nil {
		return Plan{}, fmt.Errorf("feed pipeline: %w", err)
	}
	last := chans[n]
	verify := func() error {
		select {
		case v := <-last:
			if v != ball {
				return fmt.Errorf("pipeline delivered %q, want %q", v, ball)
			}
			return nil
		default:
			return errors.New("pipeline delivered nothing")
		}
	}
	return Plan{Submitted: n, ExpectValues: n, Verify: verify}, nil
}
