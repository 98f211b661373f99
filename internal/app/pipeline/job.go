package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// State is a step of the job lifecycle
type State string

const (
	StateIdle         State = "idle"
	StateReserved     State = "reserved"
	StateNormalizing  State = "normalizing"
	StateTranscribing State = "transcribing"
	StateSummarizing  State = "summarizing"
	StatePersisting   State = "persisting"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
	StateRefused      State = "refused"
)

// Terminal reports whether the job has finished
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateRefused
}

// Flow names the two job types
type Flow string

const (
	FlowSubmit  Flow = "submit"
	FlowAnalyze Flow = "analyze"
)

// ProgressFunc observes state changes of a running job
type ProgressFunc func(jobID string, state State)

// Transition is one entry of a job's state history
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Request describes a transcription job
type Request struct {
	AccountID      int64
	Source         model.MediaSource
	InputLanguage  string
	OutputLanguage string
	Title          string
	Progress       ProgressFunc
}

// AnalyzeRequest runs a custom instruction over a saved transcription
type AnalyzeRequest struct {
	AccountID         int64
	TranscriptionID   int64
	Instruction       string
	IncludePriorNotes bool
	Title             string
	Progress          ProgressFunc
}

// Job carries the per-request state through the pipeline. Nothing in it is
// shared between jobs.
type Job struct {
	ID             string
	AccountID      int64
	Flow           Flow
	Source         model.MediaSource
	InputLanguage  string
	OutputLanguage string
	Title          string

	mu          sync.Mutex
	state       State
	history     []Transition
	reservation *model.Reservation
	progress    ProgressFunc
	logger      *zap.Logger
	now         func() time.Time
}

func newJob(flow Flow, accountID int64, logger *zap.Logger, now func() time.Time, progress ProgressFunc) *Job {
	id := uuid.NewString()
	return &Job{
		ID:        id,
		AccountID: accountID,
		Flow:      flow,
		state:     StateIdle,
		progress:  progress,
		now:       now,
		logger: logger.With(
			zap.String("job_id", id),
			zap.Int64("account_id", accountID),
			zap.String("flow", string(flow))),
	}
}

// State returns the current state
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// History returns a copy of the state transitions so far
func (j *Job) History() []Transition {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Transition(nil), j.history...)
}

// transition moves the job to next. Terminal states never change.
func (j *Job) transition(next State) error {
	j.mu.Lock()
	from := j.state
	if from.Terminal() {
		j.mu.Unlock()
		return apperrors.Newf(apperrors.KindInvalidInput, "job %s is already %s", j.ID, from)
	}
	j.state = next
	j.history = append(j.history, Transition{From: from, To: next, At: j.now()})
	progress := j.progress
	j.mu.Unlock()

	j.logger.Debug("job state changed", zap.String("from", string(from)), zap.String("to", string(next)))
	if progress != nil {
		progress(j.ID, next)
	}
	return nil
}

// Outcome is the result of a job. Err is set for failed and refused jobs;
// Warnings hold non-fatal problems of completed ones.
type Outcome struct {
	JobID         string
	Flow          Flow
	State         State
	Title         string
	Transcript    string
	Language      string
	Notes         string
	NotesLanguage string
	Analysis      string
	SavedID       int64
	SummaryURL    string
	Err           error
	ErrorKind     apperrors.Kind
	Warnings      []error
	Balance       int
	BalanceKnown  bool
	History       []Transition
	FinishedAt    time.Time
	ReservationID string
}

// Completed reports whether the job reached the completed state
func (o *Outcome) Completed() bool {
	return o.State == StateCompleted
}

// AutoTitle is the title given to jobs saved without one
func AutoTitle(t time.Time) string {
	return "Transcription " + t.Format("2006-01-02 15:04")
}
