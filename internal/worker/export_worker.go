package worker

// export_worker.go
// Processes Z-closure export jobs: renders the closure summary PDF and mails
// it to the back-office address. The closure itself is already committed when
// the job is enqueued — export failures never touch the audit trail.
//
// Closures are immutable, so retry state cannot live on the record; the
// attempt count rides in the job payload. Failed jobs go to the retry queue
// with an exponential backoff deadline and are moved back by the retry cron,
// until MaxExportAttempts, then parked in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Waesta/Wapos-sub001/internal/infra"
	"github.com/Waesta/Wapos-sub001/internal/repository"
)

const MaxExportAttempts = 3

// ExportJobPayload is the job envelope sent to QueueClosureExport.
type ExportJobPayload struct {
	ClosureID    string    `json:"closure_id"`
	RegisterCode string    `json:"register_code"`
	Attempts     int       `json:"attempts"`
	NextAttempt  time.Time `json:"next_attempt"`
}

// ClosureMailer delivers a rendered closure PDF. *infra.Mailer satisfies it.
type ClosureMailer interface {
	SendClosureReport(to, subject, body, attachmentPath string) error
}

// ExportScheduler defers failed jobs and parks exhausted ones.
// *Dispatcher satisfies it.
type ExportScheduler interface {
	ScheduleRetry(ctx context.Context, payload ExportJobPayload, delay time.Duration) error
	Park(ctx context.Context, payload ExportJobPayload, reason string) error
}

// ExportWorker renders and delivers finalized Z closures.
type ExportWorker struct {
	closures   repository.ClosureRepository
	mailer     ClosureMailer
	sched      ExportScheduler
	storageDir string
	toEmail    string
}

func NewExportWorker(closures repository.ClosureRepository, mailer ClosureMailer, sched ExportScheduler, storageDir, toEmail string) *ExportWorker {
	return &ExportWorker{
		closures:   closures,
		mailer:     mailer,
		sched:      sched,
		storageDir: storageDir,
		toEmail:    toEmail,
	}
}

// Process handles a single export job: load closure, render PDF, send email.
func (w *ExportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ExportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("export_worker: invalid payload")
		return
	}

	closureID, err := uuid.Parse(payload.ClosureID)
	if err != nil {
		log.Error().Str("closure_id", payload.ClosureID).Msg("export_worker: invalid closure_id")
		return
	}

	if err := w.export(ctx, closureID); err != nil {
		w.retry(ctx, payload, err)
		return
	}

	log.Info().
		Str("closure_id", payload.ClosureID).
		Str("register_code", payload.RegisterCode).
		Msg("export_worker: closure exported")
}

func (w *ExportWorker) export(ctx context.Context, closureID uuid.UUID) error {
	closure, err := w.closures.FindByID(ctx, closureID)
	if err != nil {
		return fmt.Errorf("load closure: %w", err)
	}

	pdfPath, err := infra.GenerateClosurePDF(closure, w.storageDir)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	if w.toEmail == "" {
		log.Warn().Str("closure_id", closureID.String()).Msg("export_worker: no EXPORT_EMAIL configured, PDF kept on disk only")
		return nil
	}

	subject := fmt.Sprintf("Z closure %s — register %s", closure.RangeEnd.Format("2006-01-02"), closure.RegisterCode)
	body := fmt.Sprintf("Finalized Z closure for register %s covering %s to %s.",
		closure.RegisterCode,
		closure.RangeStart.Format("2006-01-02 15:04"),
		closure.RangeEnd.Format("2006-01-02 15:04"))
	if err := w.mailer.SendClosureReport(w.toEmail, subject, body, pdfPath); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (w *ExportWorker) retry(ctx context.Context, payload ExportJobPayload, cause error) {
	payload.Attempts++
	if payload.Attempts >= MaxExportAttempts {
		if err := w.sched.Park(ctx, payload,
			fmt.Sprintf("max attempts (%d) exceeded: %s", MaxExportAttempts, cause)); err != nil {
			log.Error().Err(err).Str("closure_id", payload.ClosureID).Msg("export_worker: park in DLQ failed")
		}
		return
	}

	delay := computeExportBackoff(payload.Attempts)
	if err := w.sched.ScheduleRetry(ctx, payload, delay); err != nil {
		log.Error().Err(err).Str("closure_id", payload.ClosureID).Msg("export_worker: schedule retry failed")
		return
	}
	log.Warn().
		Err(cause).
		Str("closure_id", payload.ClosureID).
		Int("attempts", payload.Attempts).
		Dur("delay", delay).
		Msg("export_worker: export failed, retry scheduled")
}

// computeExportBackoff returns the wait before attempt n+1.
// Schedule: 30s after the first failure, 60s after the second.
func computeExportBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(1<<uint(attempts-1)) * 30 * time.Second
}
