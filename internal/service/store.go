package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/payroll-sync/internal/deel"
	"github.com/fleetops/payroll-sync/internal/model"
	"github.com/fleetops/payroll-sync/internal/repository"
)

// EntryStore is the slice of the time-entry repository the pipeline uses.
type EntryStore interface {
	ListSyncCandidates(ctx context.Context, status *model.EntryStatus, includeResolved bool) ([]model.SyncCandidate, error)
	SetContractID(ctx context.Context, id uuid.UUID, contractID string) error
	ListReadyForSubmission(ctx context.Context, status *model.EntryStatus) ([]model.TimeEntry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target model.EntryStatus) error
	MarkSent(ctx context.Context, id uuid.UUID, timesheetID string) error
	SyncStats(ctx context.Context) (*model.SyncStats, error)
	SubmitStats(ctx context.Context) (*model.SubmitStats, error)
	ListForReport(ctx context.Context, from, to time.Time) ([]model.StatusGroup, error)
}

// SettingsStore is the slice of the settings repository used for Deel
// configuration rows.
type SettingsStore interface {
	Get(ctx context.Context, key string) (*string, error)
	Apply(ctx context.Context, changes []repository.SettingChange) error
}

// DeelAPI is the outbound payroll API surface.
type DeelAPI interface {
	FetchContracts(ctx context.Context, opts deel.FetchOptions) ([]deel.Contract, error)
	SubmitTimesheet(ctx context.Context, data deel.TimesheetData) (*deel.TimesheetResult, error)
}

// ClientFactory builds a Deel client for the configuration resolved at
// trigger time, so settings edits apply without a restart.
type ClientFactory func(cfg deel.Config) DeelAPI

// NewDeelClient is the production ClientFactory.
func NewDeelClient(cfg deel.Config) DeelAPI {
	return deel.NewClient(cfg)
}
