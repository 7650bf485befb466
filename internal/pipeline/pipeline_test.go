package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventscan/eventscan/internal/config"
)

// recordingStep appends its name to a shared call log.
type recordingStep struct {
	name  string
	calls *[]string
	err   error
}

func (s *recordingStep) Do(_ context.Context, _ *Run) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func (s *recordingStep) Name() string {
	return s.name
}

// TestPipelineExecute tests step sequencing and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := New()
		p.AddSteps(
			&recordingStep{name: "first", calls: &calls},
			&recordingStep{name: "second", calls: &calls},
			&recordingStep{name: "third", calls: &calls},
		)

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}

		run := NewRun(config.Source{Name: "test"})
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		want := []string{"first", "second", "third"}
		if len(calls) != len(want) {
			t.Fatalf("expected %v, got %v", want, calls)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Errorf("expected call order %v, got %v", want, calls)
				break
			}
		}

		names := p.StepNames()
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("expected names %v, got %v", want, names)
				break
			}
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		var calls []string
		stepErr := errors.New("crawl failed")
		p := New()
		p.AddSteps(
			&recordingStep{name: "first", calls: &calls},
			&recordingStep{name: "second", calls: &calls, err: stepErr},
			&recordingStep{name: "third", calls: &calls},
		)

		run := NewRun(config.Source{Name: "test"})
		if err := p.Execute(context.Background(), run); !errors.Is(err, stepErr) {
			t.Fatalf("expected step error, got %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("expected execution to stop after 2 steps, got %v", calls)
		}
		if !errors.Is(run.Err, stepErr) {
			t.Errorf("expected error recorded in run state, got %v", run.Err)
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		var calls []string
		stepErr := errors.New("crawl failed")
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&recordingStep{name: "first", calls: &calls, err: stepErr},
			&recordingStep{name: "second", calls: &calls},
		)

		run := NewRun(config.Source{Name: "test"})
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("expected both steps to run, got %v", calls)
		}
		if !errors.Is(run.Err, stepErr) {
			t.Errorf("expected error recorded in run state, got %v", run.Err)
		}
	})

	t.Run("cancelled context skips steps", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := New()
		p.AddStep(&recordingStep{name: "first", calls: &calls})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		run := NewRun(config.Source{Name: "test"})
		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(calls) != 0 {
			t.Errorf("expected no steps to run, got %v", calls)
		}
	})
}

// TestBatchProcessor tests concurrent multi-source processing.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("results keep source order", func(t *testing.T) {
		t.Parallel()

		sources := []config.Source{
			{Name: "alpha"},
			{Name: "beta"},
			{Name: "gamma"},
		}

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&countingStep{})
			return p
		}

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		results, err := bp.ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		if len(results) != len(sources) {
			t.Fatalf("expected %d results, got %d", len(sources), len(results))
		}
		for i, source := range sources {
			if results[i] == nil {
				t.Fatalf("missing result for %q", source.Name)
			}
			if results[i].SourceName != source.Name {
				t.Errorf("expected result %d for %q, got %q", i, source.Name, results[i].SourceName)
			}
			if results[i].PagesCrawled != 1 {
				t.Errorf("expected step to run for %q", source.Name)
			}
			if results[i].Duration <= 0 {
				t.Errorf("expected duration recorded for %q", source.Name)
			}
		}
	})

	t.Run("failed source does not stop the batch", func(t *testing.T) {
		t.Parallel()

		sources := []config.Source{
			{Name: "bad"},
			{Name: "good"},
		}

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&failOnSourceStep{failName: "bad"})
			return p
		}

		bp := NewBatchProcessor(factory)
		results, err := bp.ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[1].PagesCrawled != 1 {
			t.Error("expected second source processed despite first failing")
		}
	})

	t.Run("cancelled context aborts the batch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&countingStep{})
			return p
		}

		bp := NewBatchProcessor(factory)
		_, err := bp.ProcessBatch(ctx, []config.Source{{Name: "alpha"}})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// countingStep marks the summary so tests can tell the step ran.
type countingStep struct{}

func (s *countingStep) Do(_ context.Context, run *Run) error {
	// Simulate a little work so recorded durations are nonzero.
	time.Sleep(time.Millisecond)
	run.Summary.PagesCrawled++
	return nil
}

func (s *countingStep) Name() string { return "counting" }

// failOnSourceStep fails for one named source and succeeds otherwise.
type failOnSourceStep struct {
	failName string
}

func (s *failOnSourceStep) Do(_ context.Context, run *Run) error {
	if run.Source.Name == s.failName {
		return errors.New("source unreachable")
	}
	run.Summary.PagesCrawled++
	return nil
}

func (s *failOnSourceStep) Name() string { return "maybe-fail" }
