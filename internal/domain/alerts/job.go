package alerts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medsbuddy/medsbuddy/internal/domain/adherence"
	"github.com/medsbuddy/medsbuddy/internal/domain/medication"
	"github.com/medsbuddy/medsbuddy/internal/platform/notification"
)

// Job runs one missed-dose pass: read, evaluate, group, dispatch.
type Job struct {
	source Source
	sender notification.EmailSender
	logger zerolog.Logger
	now    func() time.Time
}

func NewJob(source Source, sender notification.EmailSender, logger zerolog.Logger) *Job {
	return &Job{
		source: source,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// Run evaluates every candidate medication and emails one digest per patient
// with missed doses. A data-read error aborts the run before any dispatch;
// a send error is logged and skips only that caretaker's digest.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	now := j.now()
	date := now.Format("2006-01-02")

	candidates, err := j.source.ActiveWithCaretaker(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alert candidates: %w", err)
	}
	if len(candidates) == 0 {
		j.logger.Info().Msg("missed-dose check: nothing to check")
		return &Result{}, nil
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.MedicationID
	}
	taken, err := j.source.TakenMedicationIDs(ctx, ids, medication.DateOf(now))
	if err != nil {
		return nil, fmt.Errorf("load intake logs: %w", err)
	}

	// Partition into missed doses and group them per patient.
	digests := make(map[uuid.UUID]*Digest)
	missed := 0
	for _, c := range candidates {
		if taken[c.MedicationID] {
			continue
		}
		if !adherence.IsMissedAt(c.ScheduledTime, c.WindowMinutes, now) {
			continue
		}
		missed++

		d, ok := digests[c.UserID]
		if !ok {
			d = &Digest{
				PatientEmail:   c.PatientEmail,
				CaretakerEmail: c.CaretakerEmail,
				Date:           date,
			}
			digests[c.UserID] = d
		}
		d.Items = append(d.Items, DigestItem{
			Name:          c.Name,
			Dosage:        c.Dosage,
			ScheduledTime: c.ScheduledTime,
		})
	}

	// Dispatch in a stable order so retries and logs are comparable.
	ordered := make([]*Digest, 0, len(digests))
	for _, d := range digests {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, k int) bool {
		return ordered[i].PatientEmail < ordered[k].PatientEmail
	})

	notified := 0
	for _, d := range ordered {
		subject, text, htmlBody := RenderDigest(*d)
		err := j.sender.Send(ctx, notification.Message{
			To:      d.CaretakerEmail,
			Subject: subject,
			Text:    text,
			HTML:    htmlBody,
		})
		if err != nil {
			j.logger.Error().Err(err).
				Str("caretaker", d.CaretakerEmail).
				Str("patient", d.PatientEmail).
				Msg("failed to send missed-dose alert")
			continue
		}
		notified++
	}

	result := &Result{
		Checked:  len(candidates),
		Missed:   missed,
		Notified: notified,
	}
	j.logger.Info().
		Int("checked", result.Checked).
		Int("missed", result.Missed).
		Int("notified", result.Notified).
		Msg("missed-dose check completed")

	return result, nil
}
