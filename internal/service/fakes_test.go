package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/payroll-sync/internal/config"
	"github.com/fleetops/payroll-sync/internal/deel"
	"github.com/fleetops/payroll-sync/internal/model"
	"github.com/fleetops/payroll-sync/internal/repository"
)

// --- fakes shared across the service tests ---

type statusUpdate struct {
	ID     uuid.UUID
	Target model.EntryStatus
}

type fakeEntryStore struct {
	candidates    []model.SyncCandidate
	candidatesErr error

	contractIDs    map[uuid.UUID]string
	setContractErr map[uuid.UUID]error

	ready    []model.TimeEntry
	readyErr error

	statusUpdates   []statusUpdate
	updateStatusErr map[uuid.UUID]error

	sent        map[uuid.UUID]string
	markSentErr map[uuid.UUID]error

	syncStats    *model.SyncStats
	submitStats  *model.SubmitStats
	reportGroups []model.StatusGroup
	reportErr    error
	reportFrom   time.Time
	reportTo     time.Time
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{
		contractIDs:     make(map[uuid.UUID]string),
		setContractErr:  make(map[uuid.UUID]error),
		updateStatusErr: make(map[uuid.UUID]error),
		sent:            make(map[uuid.UUID]string),
		markSentErr:     make(map[uuid.UUID]error),
	}
}

func (f *fakeEntryStore) ListSyncCandidates(ctx context.Context, status *model.EntryStatus, includeResolved bool) ([]model.SyncCandidate, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	if includeResolved {
		return f.candidates, nil
	}
	var unresolved []model.SyncCandidate
	for _, candidate := range f.candidates {
		if candidate.ContractID == nil {
			unresolved = append(unresolved, candidate)
		}
	}
	return unresolved, nil
}

func (f *fakeEntryStore) SetContractID(ctx context.Context, id uuid.UUID, contractID string) error {
	if err := f.setContractErr[id]; err != nil {
		return err
	}
	f.contractIDs[id] = contractID
	return nil
}

func (f *fakeEntryStore) ListReadyForSubmission(ctx context.Context, status *model.EntryStatus) ([]model.TimeEntry, error) {
	if f.readyErr != nil {
		return nil, f.readyErr
	}
	return f.ready, nil
}

func (f *fakeEntryStore) UpdateStatus(ctx context.Context, id uuid.UUID, target model.EntryStatus) error {
	if err := f.updateStatusErr[id]; err != nil {
		return err
	}
	f.statusUpdates = append(f.statusUpdates, statusUpdate{ID: id, Target: target})
	return nil
}

func (f *fakeEntryStore) MarkSent(ctx context.Context, id uuid.UUID, timesheetID string) error {
	if err := f.markSentErr[id]; err != nil {
		return err
	}
	f.sent[id] = timesheetID
	return nil
}

func (f *fakeEntryStore) SyncStats(ctx context.Context) (*model.SyncStats, error) {
	return f.syncStats, nil
}

func (f *fakeEntryStore) SubmitStats(ctx context.Context) (*model.SubmitStats, error) {
	return f.submitStats, nil
}

func (f *fakeEntryStore) ListForReport(ctx context.Context, from, to time.Time) ([]model.StatusGroup, error) {
	f.reportFrom = from
	f.reportTo = to
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return f.reportGroups, nil
}

type fakeSettingsStore struct {
	values  map[string]string
	getErr  error
	applied [][]repository.SettingChange
}

func (f *fakeSettingsStore) Get(ctx context.Context, key string) (*string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if value, ok := f.values[key]; ok {
		return &value, nil
	}
	return nil, nil
}

func (f *fakeSettingsStore) Apply(ctx context.Context, changes []repository.SettingChange) error {
	f.applied = append(f.applied, changes)
	return nil
}

type fakeDeelAPI struct {
	contracts []deel.Contract
	fetchErr  error
	fetchOpts []deel.FetchOptions

	submitFn    func(data deel.TimesheetData) (*deel.TimesheetResult, error)
	submissions []deel.TimesheetData
}

func (f *fakeDeelAPI) FetchContracts(ctx context.Context, opts deel.FetchOptions) ([]deel.Contract, error) {
	f.fetchOpts = append(f.fetchOpts, opts)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.contracts, nil
}

func (f *fakeDeelAPI) SubmitTimesheet(ctx context.Context, data deel.TimesheetData) (*deel.TimesheetResult, error) {
	f.submissions = append(f.submissions, data)
	if f.submitFn != nil {
		return f.submitFn(data)
	}
	return &deel.TimesheetResult{ID: "ts-" + data.ContractID, Status: "pending", Created: true}, nil
}

func factoryFor(api *fakeDeelAPI) ClientFactory {
	return func(cfg deel.Config) DeelAPI { return api }
}

func testSettingsService(stored map[string]string) *SettingsService {
	if stored == nil {
		stored = map[string]string{}
	}
	cfg := &config.Config{
		Deel: config.DeelConfig{
			BaseURL:  "http://localhost:4000",
			APIToken: "env-token",
		},
	}
	return NewSettingsService(&fakeSettingsStore{values: stored}, cfg)
}

func testConfigWithoutToken() *config.Config {
	return &config.Config{
		Deel: config.DeelConfig{BaseURL: "http://localhost:4000"},
	}
}

func strPtr(s string) *string { return &s }
