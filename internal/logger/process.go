package logger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Step statuses recorded by ProcessLogger.
const (
	StepStarted   = "STARTED"
	StepCompleted = "COMPLETED"
	StepFailed    = "FAILED"
)

// StepRecord captures one pipeline step's outcome.
type StepRecord struct {
	Name      string
	Status    string
	StartedAt time.Time
	EndedAt   time.Time
	Detail    map[string]any
	Reason    string
}

// ProcessLogger provides structured logging for one pipeline run: named
// steps with explicit COMPLETED/FAILED status and an overall terminal
// process status. Every entry carries the run's process_id.
type ProcessLogger struct {
	log       *slog.Logger
	processID string
	startedAt time.Time
	steps     []*StepRecord
	status    string
}

// NewProcessLogger starts a new run log with a fresh process ID.
func NewProcessLogger() *ProcessLogger {
	p := &ProcessLogger{
		log:       Get(),
		processID: uuid.NewString(),
		startedAt: time.Now().UTC(),
	}
	p.log.Info("process started", "process_id", p.processID)
	return p
}

// ProcessID returns the run's unique identifier.
func (p *ProcessLogger) ProcessID() string { return p.processID }

// Info logs an informational message tagged with the process ID.
func (p *ProcessLogger) Info(msg string, args ...any) {
	p.log.Info(msg, append([]any{"process_id", p.processID}, args...)...)
}

// Warn logs a warning tagged with the process ID.
func (p *ProcessLogger) Warn(msg string, args ...any) {
	p.log.Warn(msg, append([]any{"process_id", p.processID}, args...)...)
}

// Error logs an error tagged with the process ID.
func (p *ProcessLogger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	p.log.Error(msg, append([]any{"process_id", p.processID}, args...)...)
}

// Step begins a named step and returns its record.
func (p *ProcessLogger) Step(name, description string) *StepRecord {
	rec := &StepRecord{
		Name:      name,
		Status:    StepStarted,
		StartedAt: time.Now().UTC(),
	}
	p.steps = append(p.steps, rec)
	p.Info("step started", "step", name, "description", description)
	return rec
}

// CompleteStep marks a step COMPLETED with optional detail.
func (p *ProcessLogger) CompleteStep(rec *StepRecord, detail map[string]any) {
	rec.Status = StepCompleted
	rec.EndedAt = time.Now().UTC()
	rec.Detail = detail
	args := []any{"step", rec.Name, "status", StepCompleted, "duration", rec.EndedAt.Sub(rec.StartedAt).String()}
	for k, v := range detail {
		args = append(args, k, v)
	}
	p.Info("step completed", args...)
}

// FailStep marks a step FAILED with a reason.
func (p *ProcessLogger) FailStep(rec *StepRecord, reason string) {
	rec.Status = StepFailed
	rec.EndedAt = time.Now().UTC()
	rec.Reason = reason
	p.Warn("step failed", "step", rec.Name, "status", StepFailed, "reason", reason)
}

// EndProcess records the terminal status for the run (COMPLETED or FAILED).
func (p *ProcessLogger) EndProcess(status string, detail map[string]any) {
	p.status = status
	args := []any{"status", status, "duration", time.Now().UTC().Sub(p.startedAt).String()}
	for k, v := range detail {
		args = append(args, k, v)
	}
	p.Info("process ended", args...)
}

// Status returns the terminal status set by EndProcess, or "" while running.
func (p *ProcessLogger) Status() string { return p.status }

// Steps returns the recorded steps in execution order.
func (p *ProcessLogger) Steps() []*StepRecord { return p.steps }
