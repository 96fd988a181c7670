package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fleetops/payroll-sync/internal/deel"
	"github.com/fleetops/payroll-sync/internal/model"
)

type SyncOptions struct {
	// EntryStatus restricts the run to entries in this status when set.
	EntryStatus *model.EntryStatus
	// ContractStatuses filters the Deel contract fetch; empty fetches all.
	ContractStatuses []string
	// OverwriteExisting also re-resolves entries that already carry a
	// contract id. The default leaves resolved entries untouched.
	OverwriteExisting bool
}

type SyncResult struct {
	Success                bool     `json:"success"`
	TotalContracts         int      `json:"totalContracts"`
	TotalTimeEntries       int      `json:"totalTimeEntries"`
	EntriesUpdated         int      `json:"entriesUpdated"`
	EntriesWithoutContract int      `json:"entriesWithoutContract"`
	Errors                 []string `json:"errors"`
	Warnings               []string `json:"warnings,omitempty"`
}

// SyncService resolves contract ids on time entries by matching worker
// emails against the contract set fetched from Deel.
type SyncService struct {
	store     EntryStore
	settings  *SettingsService
	newClient ClientFactory
	log       zerolog.Logger
}

func NewSyncService(store EntryStore, settings *SettingsService, newClient ClientFactory, log zerolog.Logger) *SyncService {
	return &SyncService{store: store, settings: settings, newClient: newClient, log: log}
}

// SyncContracts runs one sync pass. Run-level failures land in the result,
// never in the returned error; the error is reserved for configuration
// problems surfaced before the run starts.
func (s *SyncService) SyncContracts(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{Errors: []string{}}

	cfg, err := s.settings.ResolveDeelConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := s.newClient(cfg)

	contracts, err := client.FetchContracts(ctx, deel.FetchOptions{Statuses: opts.ContractStatuses})
	if err != nil {
		s.log.Error().Err(err).Msg("contract fetch failed")
		result.Errors = append(result.Errors, fmt.Sprintf("sync failed: %v", err))
		return result, nil
	}
	result.TotalContracts = len(contracts)

	index, warnings := deel.BuildEmailIndex(contracts)
	result.Warnings = warnings
	s.log.Info().
		Int("contracts", len(contracts)).
		Int("emails", len(index)).
		Int("collisions", len(warnings)).
		Msg("built email index")

	candidates, err := s.store.ListSyncCandidates(ctx, opts.EntryStatus, opts.OverwriteExisting)
	if err != nil {
		s.log.Error().Err(err).Msg("listing sync candidates failed")
		result.Errors = append(result.Errors, fmt.Sprintf("sync failed: %v", err))
		return result, nil
	}
	result.TotalTimeEntries = len(candidates)

	// Rows are processed strictly sequentially; one bad row is recorded and
	// never blocks the rest.
	for _, candidate := range candidates {
		email := candidate.LookupEmail()
		if email == "" {
			result.EntriesWithoutContract++
			continue
		}

		contractID, ok := index[deel.NormalizeEmail(email)]
		if !ok {
			result.EntriesWithoutContract++
			s.log.Debug().Str("email", email).Msg("no contract for email")
			continue
		}

		if err := s.store.SetContractID(ctx, candidate.ID, contractID); err != nil {
			msg := fmt.Sprintf("failed to update entry %s: %v", candidate.ID, err)
			s.log.Error().Str("entry_id", candidate.ID.String()).Err(err).Msg("entry update failed")
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.EntriesUpdated++
	}

	result.Success = len(result.Errors) == 0
	s.log.Info().
		Int("updated", result.EntriesUpdated).
		Int("without_contract", result.EntriesWithoutContract).
		Int("errors", len(result.Errors)).
		Msg("contract sync complete")

	return result, nil
}

// Stats reports time-entry counts by contract sync state.
func (s *SyncService) Stats(ctx context.Context) (*model.SyncStats, error) {
	return s.store.SyncStats(ctx)
}
