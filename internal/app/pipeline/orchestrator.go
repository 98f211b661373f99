package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"media-notes/internal/app/api"
	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/metrics"
	"media-notes/internal/app/model"
	"media-notes/internal/app/repository"
)

// CreditLedger holds, spends and returns job credits
type CreditLedger interface {
	Reserve(ctx context.Context, accountID int64) (*model.Reservation, error)
	Commit(ctx context.Context, r *model.Reservation) error
	Refund(ctx context.Context, r *model.Reservation) error
	Touch(ctx context.Context, r *model.Reservation) error
	Recharge(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	Balance(ctx context.Context, accountID int64) (int, error)
}

// MediaNormalizer turns a media source into canonical audio
type MediaNormalizer interface {
	Normalize(ctx context.Context, src model.MediaSource) (*model.AudioArtifact, error)
}

// Archiver keeps a copy of the summary file of a saved job and returns
// where it can be downloaded
type Archiver interface {
	Archive(ctx context.Context, saved *model.SavedTranscription) (string, error)
}

// Orchestrator runs jobs through reserve, normalize, transcribe, summarize
// and persist. It is the only component that settles reservations.
type Orchestrator struct {
	ledger      CreditLedger
	normalizer  MediaNormalizer
	transcriber api.Transcriber
	summarizer  api.Summarizer
	store       repository.TranscriptionDAO
	archive     Archiver
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrchestrator wires the pipeline. archive and m may be nil.
func NewOrchestrator(
	ledger CreditLedger,
	normalizer MediaNormalizer,
	transcriber api.Transcriber,
	summarizer api.Summarizer,
	store repository.TranscriptionDAO,
	archive Archiver,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		ledger:      ledger,
		normalizer:  normalizer,
		transcriber: transcriber,
		summarizer:  summarizer,
		store:       store,
		archive:     archive,
		metrics:     m,
		logger:      logger.Named("pipeline"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithArchive returns a copy of o that archives summary files to a
func (o *Orchestrator) WithArchive(a Archiver) *Orchestrator {
	c := *o
	c.archive = a
	return &c
}

// Submit transcribes and summarizes req.Source for req.AccountID. The
// returned outcome is never nil.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (out *Outcome) {
	job := newJob(FlowSubmit, req.AccountID, o.logger, o.now, req.Progress)
	job.Source = req.Source
	job.InputLanguage = defaultString(req.InputLanguage, model.LanguageAuto)
	job.OutputLanguage = defaultString(req.OutputLanguage, "en")
	job.Title = strings.TrimSpace(req.Title)
	out = &Outcome{JobID: job.ID, Flow: FlowSubmit}

	job.logger.Info("job submitted",
		zap.String("source", req.Source.Describe()),
		zap.String("input_language", job.InputLanguage),
		zap.String("output_language", job.OutputLanguage))

	if req.Source.Upload == nil && strings.TrimSpace(req.Source.URL) == "" {
		return o.reject(ctx, job, out, apperrors.RequiredField("media source"))
	}
	if !o.reserve(ctx, job, out) {
		return out
	}
	defer o.settle(ctx, job, out)

	var audio *model.AudioArtifact
	err := o.stage(ctx, job, StateNormalizing, func() (err error) {
		audio, err = o.normalizer.Normalize(ctx, req.Source)
		return err
	})
	if err != nil {
		o.fail(job, out, apperrors.KindConversion, err)
		return out
	}
	defer func() {
		if err := audio.Release(); err != nil {
			job.logger.Warn("failed to remove audio artifact", zap.Error(err))
		}
	}()
	o.metrics.RecordAudio(audio.Duration)

	var transcript *model.TranscriptionResult
	err = o.stage(ctx, job, StateTranscribing, func() (err error) {
		transcript, err = o.transcriber.Transcribe(ctx, audio, job.InputLanguage)
		return err
	})
	if err != nil {
		o.fail(job, out, apperrors.KindTranscription, err)
		return out
	}
	out.Transcript = transcript.Text
	out.Language = transcript.Language
	if strings.TrimSpace(transcript.Text) == "" {
		job.logger.Warn("transcription is empty")
	}

	var notes *model.NotesResult
	err = o.stage(ctx, job, StateSummarizing, func() (err error) {
		notes, err = o.summarizer.Summarize(ctx, transcript.Text, job.OutputLanguage)
		return err
	})
	if err != nil {
		o.fail(job, out, apperrors.KindSummarize, err)
		return out
	}
	out.Notes = notes.Text
	out.NotesLanguage = notes.Language

	o.persist(ctx, job, out, &model.SavedTranscription{
		AccountID:  job.AccountID,
		Title:      job.Title,
		Transcript: out.Transcript,
		Notes:      out.Notes,
	})
	o.complete(job, out)
	return out
}

// Analyze runs a custom instruction over a saved transcription and saves
// the answer as a new row. It consumes one credit like Submit.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) (out *Outcome) {
	job := newJob(FlowAnalyze, req.AccountID, o.logger, o.now, req.Progress)
	job.Title = strings.TrimSpace(req.Title)
	out = &Outcome{JobID: job.ID, Flow: FlowAnalyze}

	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return o.reject(ctx, job, out, apperrors.RequiredField("instruction"))
	}
	prior, err := o.store.GetTranscription(ctx, req.TranscriptionID, req.AccountID)
	if err != nil {
		return o.reject(ctx, job, out, err)
	}
	out.Transcript = prior.Transcript
	out.Notes = prior.Notes

	job.logger.Info("analysis submitted",
		zap.Int64("transcription_id", prior.ID),
		zap.Bool("include_prior_notes", req.IncludePriorNotes))

	if !o.reserve(ctx, job, out) {
		return out
	}
	defer o.settle(ctx, job, out)

	var analysis string
	err = o.stage(ctx, job, StateSummarizing, func() (err error) {
		analysis, err = o.summarizer.Analyze(ctx, prior.Transcript, prior.Notes, instruction, req.IncludePriorNotes)
		return err
	})
	if err != nil {
		o.fail(job, out, apperrors.KindSummarize, err)
		return out
	}
	out.Analysis = analysis

	o.persist(ctx, job, out, &model.SavedTranscription{
		AccountID:    job.AccountID,
		Title:        job.Title,
		Transcript:   prior.Transcript,
		Notes:        prior.Notes,
		CustomNotes:  &analysis,
		CustomPrompt: &instruction,
	})
	o.complete(job, out)
	return out
}

// reserve takes the job credit. It returns false when the job ended
// without a reservation, either refused or failed.
func (o *Orchestrator) reserve(ctx context.Context, job *Job, out *Outcome) bool {
	r, err := o.ledger.Reserve(ctx, job.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientCredit) {
			out.Err = err
			out.ErrorKind = apperrors.KindInsufficientCredit
			job.transition(StateRefused)
			o.finish(ctx, job, out)
			return false
		}
		o.reject(ctx, job, out, err)
		return false
	}
	job.reservation = r
	out.ReservationID = r.ID
	job.transition(StateReserved)
	return true
}

// reject fails a job that holds no reservation
func (o *Orchestrator) reject(ctx context.Context, job *Job, out *Outcome, err error) *Outcome {
	out.Err = err
	out.ErrorKind = apperrors.KindOf(err)
	job.transition(StateFailed)
	o.finish(ctx, job, out)
	return out
}

// stage moves the job into state and runs fn, recording its latency. The
// reservation is touched first so the stale sweep sees the job is alive.
func (o *Orchestrator) stage(ctx context.Context, job *Job, state State, fn func() error) error {
	job.transition(state)
	if err := o.ledger.Touch(ctx, job.reservation); err != nil {
		job.logger.Warn("failed to touch reservation", zap.Error(err))
	}
	start := time.Now()
	err := fn()
	if err != nil {
		o.metrics.RecordFailure(string(state), time.Since(start))
		return err
	}
	o.metrics.RecordSuccess(string(state), time.Since(start))
	return nil
}

// fail marks the job failed. Errors without a kind get the stage's kind;
// cancellation is kept as is.
func (o *Orchestrator) fail(job *Job, out *Outcome, kind apperrors.Kind, err error) {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		err = apperrors.WithKind(kind, err, string(job.State())+" failed")
	}
	out.Err = err
	out.ErrorKind = apperrors.KindOf(err)
	job.logger.Warn("job failed", zap.String("stage", string(job.State())), zap.Error(err))
	job.transition(StateFailed)
}

// persist saves the result. A storage failure does not fail the job: it is
// reported as a warning and the credit is still spent.
func (o *Orchestrator) persist(ctx context.Context, job *Job, out *Outcome, saved *model.SavedTranscription) {
	job.transition(StatePersisting)
	if saved.Title == "" {
		saved.Title = AutoTitle(o.now())
	}
	saved.CreatedAt = o.now()
	out.Title = saved.Title

	start := time.Now()
	id, err := o.store.SaveTranscription(ctx, saved)
	if err != nil {
		o.metrics.RecordFailure(string(StatePersisting), time.Since(start))
		out.Warnings = append(out.Warnings, apperrors.WrapKind(apperrors.KindPersistenceWarning, err, "result was not saved"))
		job.logger.Error("failed to persist result", zap.Error(err))
		return
	}
	o.metrics.RecordSuccess(string(StatePersisting), time.Since(start))
	saved.ID = id
	out.SavedID = id

	if o.archive == nil {
		return
	}
	link, err := o.archive.Archive(ctx, saved)
	if err != nil {
		out.Warnings = append(out.Warnings, apperrors.WrapKind(apperrors.KindPersistenceWarning, err, "summary file was not archived"))
		job.logger.Warn("failed to archive summary", zap.Error(err))
		return
	}
	out.SummaryURL = link
}

func (o *Orchestrator) complete(job *Job, out *Outcome) {
	job.transition(StateCompleted)
	job.logger.Info("job completed",
		zap.Int64("saved_id", out.SavedID),
		zap.Int("warnings", len(out.Warnings)))
}

// settle commits the reservation of a completed job and refunds it in every
// other case, including panics and cancellation. It runs deferred, once.
func (o *Orchestrator) settle(ctx context.Context, job *Job, out *Outcome) {
	if p := recover(); p != nil {
		job.logger.Error("job panicked", zap.Any("panic", p), zap.Stack("stack"))
		out.Err = apperrors.Newf(apperrors.KindUnknown, "internal error during %s: %v", job.State(), p)
		out.ErrorKind = apperrors.KindUnknown
		job.transition(StateFailed)
	}

	settleCtx := context.WithoutCancel(ctx)
	r := job.reservation
	if job.State() == StateCompleted {
		o.commit(settleCtx, job, out)
	} else {
		if !job.State().Terminal() {
			job.transition(StateFailed)
		}
		if err := o.ledger.Refund(settleCtx, r); err != nil {
			job.logger.Error("failed to refund reservation", zap.String("reservation_id", r.ID), zap.Error(err))
		}
	}
	o.finish(settleCtx, job, out)
}

// commit spends the credit of a completed job. A reservation refunded by
// the stale sweep while the job ran is replaced by a fresh charge; when
// that is impossible the outcome carries a warning.
func (o *Orchestrator) commit(ctx context.Context, job *Job, out *Outcome) {
	r := job.reservation
	err := o.ledger.Commit(ctx, r)
	if err == nil {
		return
	}
	if errors.Is(err, apperrors.ErrInvalidReservation) {
		replacement, rerr := o.ledger.Recharge(ctx, r)
		if rerr == nil {
			job.reservation = replacement
			out.ReservationID = replacement.ID
			return
		}
		err = rerr
	}
	job.logger.Error("failed to commit reservation", zap.String("reservation_id", r.ID), zap.Error(err))
	out.Warnings = append(out.Warnings, apperrors.WrapKind(apperrors.KindPersistenceWarning, err, "credit was not charged"))
}

// finish fills the outcome summary fields and records the job
func (o *Orchestrator) finish(ctx context.Context, job *Job, out *Outcome) {
	out.State = job.State()
	out.History = job.History()
	out.FinishedAt = o.now()

	if balance, err := o.ledger.Balance(context.WithoutCancel(ctx), job.AccountID); err == nil {
		out.Balance = balance
		out.BalanceKnown = true
	} else {
		job.logger.Warn("failed to read balance", zap.Error(err))
	}

	kind := ""
	if out.Err != nil {
		kind = string(out.ErrorKind)
	}
	o.metrics.RecordJob(string(job.Flow), string(out.State), kind)
	job.logger.Info("job finished",
		zap.String("state", string(out.State)),
		zap.String("error_kind", kind),
		zap.Int("balance", out.Balance))
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
