package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/payroll-sync/internal/deel"
	"github.com/fleetops/payroll-sync/internal/model"
)

func newSyncService(store EntryStore, api *fakeDeelAPI) *SyncService {
	return NewSyncService(store, testSettingsService(nil), factoryFor(api), zerolog.Nop())
}

func contractWithEmail(id, email string) deel.Contract {
	return deel.Contract{ID: id, Worker: &deel.Worker{Email: &email}}
}

func TestSyncContractsMatchesEntries(t *testing.T) {
	matched := uuid.New()
	unmatched := uuid.New()
	noEmail := uuid.New()

	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{
		{ID: matched, Email: strPtr(" Alice@Example.com ")},
		{ID: unmatched, Email: strPtr("nobody@example.com")},
		{ID: noEmail},
	}

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-1", "alice@example.com"),
	}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.TotalContracts)
	assert.Equal(t, 3, result.TotalTimeEntries)
	assert.Equal(t, 1, result.EntriesUpdated)
	assert.Equal(t, 2, result.EntriesWithoutContract)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "c-1", store.contractIDs[matched])
	_, touched := store.contractIDs[unmatched]
	assert.False(t, touched)
}

func TestSyncContractsProfileEmailWins(t *testing.T) {
	entry := uuid.New()

	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{
		{ID: entry, Email: strPtr("old@example.com"), ProfileEmail: strPtr("current@example.com")},
	}

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-old", "old@example.com"),
		contractWithEmail("c-new", "current@example.com"),
	}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesUpdated)
	assert.Equal(t, "c-new", store.contractIDs[entry])
}

func TestSyncContractsSkipsResolvedByDefault(t *testing.T) {
	resolved := uuid.New()
	pendingEntry := uuid.New()
	existing := "c-old"

	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{
		{ID: resolved, Email: strPtr("alice@example.com"), ContractID: &existing},
		{ID: pendingEntry, Email: strPtr("alice@example.com")},
	}

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-1", "alice@example.com"),
	}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalTimeEntries)
	assert.Equal(t, "c-1", store.contractIDs[pendingEntry])
	_, touched := store.contractIDs[resolved]
	assert.False(t, touched, "resolved entry must stay untouched without overwriteExisting")
}

func TestSyncContractsOverwriteExisting(t *testing.T) {
	resolved := uuid.New()
	existing := "c-old"

	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{
		{ID: resolved, Email: strPtr("alice@example.com"), ContractID: &existing},
	}

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-1", "alice@example.com"),
	}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{OverwriteExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesUpdated)
	assert.Equal(t, "c-1", store.contractIDs[resolved])
}

func TestSyncContractsPerEntryFailureIsolated(t *testing.T) {
	broken := uuid.New()
	healthy := uuid.New()

	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{
		{ID: broken, Email: strPtr("alice@example.com")},
		{ID: healthy, Email: strPtr("alice@example.com")},
	}
	store.setContractErr[broken] = errors.New("row locked")

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-1", "alice@example.com"),
	}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.EntriesUpdated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], broken.String())
	assert.Equal(t, "c-1", store.contractIDs[healthy], "failure on one row must not block the rest")
}

func TestSyncContractsFetchFailureShortCircuits(t *testing.T) {
	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{{ID: uuid.New(), Email: strPtr("a@example.com")}}

	api := &fakeDeelAPI{fetchErr: &deel.APIError{StatusCode: 500, Body: "boom"}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.TotalTimeEntries)
	assert.Equal(t, 0, result.EntriesUpdated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "sync failed")
}

func TestSyncContractsCollisionWarning(t *testing.T) {
	store := newFakeEntryStore()

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-1", "shared@example.com"),
		contractWithEmail("c-2", "shared@example.com"),
	}}

	result, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "shared@example.com")
}

func TestSyncContractsPassesContractStatuses(t *testing.T) {
	store := newFakeEntryStore()
	api := &fakeDeelAPI{}

	_, err := newSyncService(store, api).SyncContracts(context.Background(), SyncOptions{
		ContractStatuses: []string{"in_progress", "onboarded"},
	})
	require.NoError(t, err)
	require.Len(t, api.fetchOpts, 1)
	assert.Equal(t, []string{"in_progress", "onboarded"}, api.fetchOpts[0].Statuses)
}

func TestSyncContractsTokenNotConfigured(t *testing.T) {
	settings := NewSettingsService(&fakeSettingsStore{values: map[string]string{}}, testConfigWithoutToken())
	svc := NewSyncService(newFakeEntryStore(), settings, factoryFor(&fakeDeelAPI{}), zerolog.Nop())

	_, err := svc.SyncContracts(context.Background(), SyncOptions{})
	assert.ErrorIs(t, err, ErrTokenNotConfigured)
}

func TestSyncContractsIdempotentAtFixedPoint(t *testing.T) {
	entry := uuid.New()

	store := newFakeEntryStore()
	store.candidates = []model.SyncCandidate{{ID: entry, Email: strPtr("alice@example.com")}}

	api := &fakeDeelAPI{contracts: []deel.Contract{
		contractWithEmail("c-1", "alice@example.com"),
	}}
	svc := newSyncService(store, api)

	first, err := svc.SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.EntriesUpdated)

	// Simulate the persisted write before the second pass.
	resolved := store.contractIDs[entry]
	store.candidates[0].ContractID = &resolved

	second, err := svc.SyncContracts(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.EntriesUpdated)
	assert.Equal(t, 0, second.TotalTimeEntries)
	assert.True(t, second.Success)
}
