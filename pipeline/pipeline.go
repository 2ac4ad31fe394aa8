package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrEmptyOutput is the cause recorded when a stage succeeds but yields nothing.
var ErrEmptyOutput = errors.New("stage produced no output")

// StageFunc turns the previous stage's output into the next stage's input.
type StageFunc func(ctx context.Context, input string) (string, error)

// Stage describes one step of a run.
type Stage struct {
	Name string
	// Kind classifies this stage's failures, e.g. processing.ErrSynthesis.
	Kind error
	Run  StageFunc
}

// StageError is returned when a stage fails. No later stage has run.
type StageError struct {
	Index int
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// Result is what a completed run hands back.
type Result struct {
	RunID  string
	Output string
	// Stages lists the stage names that ran, in order.
	Stages []string
}

// Pipeline runs its stages strictly in sequence.
type Pipeline struct {
	stages []Stage
}

// New creates a pipeline from an ordered list of stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// StageNames returns the configured stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Run feeds input through every stage. The first failure stops the run and is
// returned as a *StageError.
func (p *Pipeline) Run(ctx context.Context, runID, input string) (*Result, error) {
	if len(p.stages) == 0 {
		return nil, fmt.Errorf("pipeline has no stages")
	}

	log.Printf("[pipeline] Starting run %s (%s)", runID, strings.Join(p.StageNames(), " -> "))

	current := input
	ran := make([]string, 0, len(p.stages))
	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Index: i, Stage: stage.Name, Kind: stage.Kind, Err: err}
		}

		log.Printf("[pipeline] Run %s stage %d/%d: %s", runID, i+1, len(p.stages), stage.Name)
		out, err := stage.Run(ctx, current)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyOutput
		}
		if err != nil {
			stageErr := &StageError{Index: i, Stage: stage.Name, Kind: stage.Kind, Err: err}
			log.Printf("[pipeline] Run %s failed at stage %s: %v", runID, stage.Name, stageErr)
			return nil, stageErr
		}

		ran = append(ran, stage.Name)
		current = out
	}

	log.Printf("[pipeline] Completed run %s", runID)
	return &Result{RunID: runID, Output: current, Stages: ran}, nil
}
