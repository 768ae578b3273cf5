package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordStep struct {
	name  string
	err   error
	calls *[]string
}

func (s *recordStep) Name() string { return s.name }

func (s *recordStep) Do(_ context.Context, _ *PageJob) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := New()
		p.AddStep(&recordStep{name: "a", calls: &calls})
		p.AddSteps(&recordStep{name: "b", calls: &calls}, &recordStep{name: "c", calls: &calls})

		job := &PageJob{}
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, job.Performed); diff != "" {
			t.Errorf("performed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var calls []string
		p := New()
		p.AddSteps(
			&recordStep{name: "a", calls: &calls},
			&recordStep{name: "b", err: boom, calls: &calls},
			&recordStep{name: "c", calls: &calls},
		)

		job := &PageJob{}
		if err := p.Execute(context.Background(), job); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b"}, calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"a"}, job.Performed); diff != "" {
			t.Errorf("performed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("continue on error returns first error", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")
		var calls []string
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&recordStep{name: "a", err: first, calls: &calls},
			&recordStep{name: "b", err: errors.New("second"), calls: &calls},
			&recordStep{name: "c", calls: &calls},
		)

		if err := p.Execute(context.Background(), &PageJob{}); !errors.Is(err, first) {
			t.Fatalf("expected first error, got %v", err)
		}
		if len(calls) != 3 {
			t.Errorf("expected 3 calls, got %v", calls)
		}
	})

	t.Run("cancelled context runs nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls []string
		p := New()
		p.AddStep(&recordStep{name: "a", calls: &calls})

		if err := p.Execute(ctx, &PageJob{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(calls) != 0 {
			t.Errorf("expected no calls, got %v", calls)
		}
	})
}

func TestPipeline_StepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSteps(NewLoadStep(), NewEncodeStep(DefaultCapOptions()))

	if p.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", p.StepCount())
	}
	if diff := cmp.Diff([]string{"load", "encode"}, p.StepNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
