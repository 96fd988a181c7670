package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/payroll-sync/internal/deel"
	"github.com/fleetops/payroll-sync/internal/model"
)

const (
	defaultBatchSize  = 10
	defaultBatchDelay = time.Second
)

type SubmitOptions struct {
	// EntryStatus restricts the run to entries in this status when set.
	EntryStatus *model.EntryStatus
	AutoApprove bool
	// BatchSize bounds how many entries are submitted between delays.
	BatchSize int
	// BatchDelay is the fixed pause between batches, the only rate limiting
	// applied toward the Deel API.
	BatchDelay time.Duration
}

type SubmitError struct {
	EntryID string `json:"entryId"`
	Error   string `json:"error"`
}

type SubmitResult struct {
	Success          bool          `json:"success"`
	TotalEntries     int           `json:"totalEntries"`
	EntriesSubmitted int           `json:"entriesSubmitted"`
	EntriesFailed    int           `json:"entriesFailed"`
	EntriesSkipped   int           `json:"entriesSkipped"`
	Errors           []SubmitError `json:"errors"`
}

// SubmitService sends resolved, unsent time entries to Deel as timesheets
// in fixed-size sequential batches.
type SubmitService struct {
	store     EntryStore
	settings  *SettingsService
	newClient ClientFactory
	log       zerolog.Logger
}

func NewSubmitService(store EntryStore, settings *SettingsService, newClient ClientFactory, log zerolog.Logger) *SubmitService {
	return &SubmitService{store: store, settings: settings, newClient: newClient, log: log}
}

// SubmitTimesheets runs one submission pass. Entries already carrying a
// Deel timesheet id are never selected, so a re-run cannot double-submit.
func (s *SubmitService) SubmitTimesheets(ctx context.Context, opts SubmitOptions) (*SubmitResult, error) {
	result := &SubmitResult{Errors: []SubmitError{}}

	cfg, err := s.settings.ResolveDeelConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := s.newClient(cfg)

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	batchDelay := opts.BatchDelay
	if batchDelay <= 0 {
		batchDelay = defaultBatchDelay
	}

	entries, err := s.store.ListReadyForSubmission(ctx, opts.EntryStatus)
	if err != nil {
		s.log.Error().Err(err).Msg("listing entries for submission failed")
		result.Errors = append(result.Errors, SubmitError{
			EntryID: "N/A",
			Error:   fmt.Sprintf("submission failed: %v", err),
		})
		return result, nil
	}
	result.TotalEntries = len(entries)

	if len(entries) == 0 {
		result.Success = true
		return result, nil
	}

	batchCount := (len(entries) + batchSize - 1) / batchSize
	s.log.Info().
		Int("entries", len(entries)).
		Int("batches", batchCount).
		Msg("starting timesheet submission")

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		s.log.Debug().
			Int("batch", start/batchSize+1).
			Int("of", batchCount).
			Msg("processing batch")

		for _, entry := range entries[start:end] {
			s.processEntry(ctx, client, entry, opts.AutoApprove, result)
		}

		if end < len(entries) {
			if err := sleepBetweenBatches(ctx, batchDelay); err != nil {
				s.log.Warn().Err(err).Msg("submission run cancelled between batches")
				result.Errors = append(result.Errors, SubmitError{
					EntryID: "N/A",
					Error:   fmt.Sprintf("run cancelled: %v", err),
				})
				result.Success = false
				return result, nil
			}
		}
	}

	result.Success = result.EntriesFailed == 0
	s.log.Info().
		Int("submitted", result.EntriesSubmitted).
		Int("failed", result.EntriesFailed).
		Int("skipped", result.EntriesSkipped).
		Msg("timesheet submission complete")

	return result, nil
}

func (s *SubmitService) processEntry(
	ctx context.Context,
	client DeelAPI,
	entry model.TimeEntry,
	autoApprove bool,
	result *SubmitResult,
) {
	// The selection already requires a contract id; this guards against a
	// concurrent writer clearing it between the list and the submit.
	if entry.ContractID == nil {
		result.EntriesSkipped++
		s.log.Warn().Str("entry_id", entry.ID.String()).Msg("skipping entry without contract id")
		return
	}

	fail := func(err error) {
		result.EntriesFailed++
		result.Errors = append(result.Errors, SubmitError{
			EntryID: entry.ID.String(),
			Error:   err.Error(),
		})
		s.log.Error().Str("entry_id", entry.ID.String()).Err(err).Msg("entry submission failed")

		// Secondary write: a failure here is logged and swallowed so it can
		// never mask the original error.
		if updateErr := s.store.UpdateStatus(ctx, entry.ID, model.EntryStatusFailed); updateErr != nil {
			s.log.Error().
				Str("entry_id", entry.ID.String()).
				Err(updateErr).
				Msg("failed to mark entry failed")
		}
	}

	// processing is an observable intermediate state; an entry stuck here
	// after a crash marks an interrupted run.
	if err := s.store.UpdateStatus(ctx, entry.ID, model.EntryStatusProcessing); err != nil {
		fail(err)
		return
	}

	response, err := client.SubmitTimesheet(ctx, deel.TimesheetData{
		Quantity:       entry.Quantity(),
		ContractID:     *entry.ContractID,
		Description:    entry.Description(),
		DateSubmitted:  entry.DateString(),
		IsAutoApproved: autoApprove,
	})
	if err != nil {
		fail(err)
		return
	}

	if err := s.store.MarkSent(ctx, entry.ID, response.ID); err != nil {
		fail(err)
		return
	}

	result.EntriesSubmitted++
	s.log.Debug().
		Str("entry_id", entry.ID.String()).
		Str("timesheet_id", response.ID).
		Msg("entry submitted")
}

// sleepBetweenBatches waits out the fixed inter-batch delay. Context
// cancellation is honored only here, at the natural checkpoint between
// batches; entries are never abandoned mid-flight.
func sleepBetweenBatches(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats reports time-entry counts by submission state.
func (s *SubmitService) Stats(ctx context.Context) (*model.SubmitStats, error) {
	return s.store.SubmitStats(ctx)
}
