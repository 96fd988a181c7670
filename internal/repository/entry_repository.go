package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetops/payroll-sync/internal/model"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// ListSyncCandidates selects entries for contract correlation together with
// the linked user's profile email. Entries that already carry a contract id
// are excluded unless includeResolved is set.
func (r *EntryRepository) ListSyncCandidates(
	ctx context.Context,
	status *model.EntryStatus,
	includeResolved bool,
) ([]model.SyncCandidate, error) {
	baseQuery := `
		SELECT
			e.id,
			e.email,
			p.email AS profile_email,
			e.contract_id
		FROM time_entries e
		LEFT JOIN profiles p ON p.user_id = e.user_id
		WHERE 1 = 1
	`
	var args []interface{}
	if status != nil {
		baseQuery += " AND e.status = ?"
		args = append(args, *status)
	}
	if !includeResolved {
		baseQuery += " AND e.contract_id IS NULL"
	}
	baseQuery += " ORDER BY e.created_at ASC"

	var candidates []model.SyncCandidate
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *EntryRepository) SetContractID(ctx context.Context, id uuid.UUID, contractID string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE time_entries SET contract_id = ? WHERE id = ?
	`, contractID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListReadyForSubmission selects entries with a resolved contract and no
// prior submission, oldest first so billing order is preserved.
func (r *EntryRepository) ListReadyForSubmission(
	ctx context.Context,
	status *model.EntryStatus,
) ([]model.TimeEntry, error) {
	baseQuery := `
		SELECT
			id,
			user_id,
			email,
			hours,
			minutes,
			category,
			notes,
			count,
			entry_date,
			status,
			contract_id,
			deel_timesheet_id,
			created_at
		FROM time_entries
		WHERE contract_id IS NOT NULL
			AND deel_timesheet_id IS NULL
	`
	var args []interface{}
	if status != nil {
		baseQuery += " AND status = ?"
		args = append(args, *status)
	}
	baseQuery += " ORDER BY entry_date ASC, created_at ASC"

	var entries []model.TimeEntry
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateStatus moves one entry to target, rejecting transitions outside the
// pending|failed -> processing -> sent|failed table at the write itself.
func (r *EntryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, target model.EntryStatus) error {
	sources := model.TransitionSources(target)
	if len(sources) == 0 {
		return fmt.Errorf("%w: no transition into %q", model.ErrInvalidTransition, target)
	}

	placeholders := make([]string, len(sources))
	args := []interface{}{target, id}
	for i, source := range sources {
		placeholders[i] = "?"
		args = append(args, source)
	}

	result := r.db.WithContext(ctx).Exec(fmt.Sprintf(`
		UPDATE time_entries SET status = ? WHERE id = ? AND status IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: entry %s is not in %v", model.ErrInvalidTransition, id, sources)
	}
	return nil
}

// MarkSent records the external timesheet id and completes the
// processing -> sent transition in one statement.
func (r *EntryRepository) MarkSent(ctx context.Context, id uuid.UUID, timesheetID string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE time_entries
		SET deel_timesheet_id = ?, status = ?
		WHERE id = ? AND status = ?
	`, timesheetID, model.EntryStatusSent, id, model.EntryStatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: entry %s is not processing", model.ErrInvalidTransition, id)
	}
	return nil
}

func (r *EntryRepository) SyncStats(ctx context.Context) (*model.SyncStats, error) {
	var rows []struct {
		Status          model.EntryStatus
		WithContract    int64
		WithoutContract int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(*) FILTER (WHERE contract_id IS NOT NULL) AS with_contract,
			COUNT(*) FILTER (WHERE contract_id IS NULL) AS without_contract
		FROM time_entries
		GROUP BY status
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &model.SyncStats{
		ByStatus: make(map[model.EntryStatus]model.StatusPair, len(rows)),
	}
	for _, row := range rows {
		stats.Total += row.WithContract + row.WithoutContract
		stats.WithContract += row.WithContract
		stats.WithoutContract += row.WithoutContract
		stats.ByStatus[row.Status] = model.StatusPair{
			WithContract:    row.WithContract,
			WithoutContract: row.WithoutContract,
		}
	}
	return stats, nil
}

func (r *EntryRepository) SubmitStats(ctx context.Context) (*model.SubmitStats, error) {
	var counters struct {
		Total           int64
		ReadyToSubmit   int64
		NeedsContractID int64
		Submitted       int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (
				WHERE contract_id IS NOT NULL
					AND deel_timesheet_id IS NULL
					AND status = ?
			) AS ready_to_submit,
			COUNT(*) FILTER (WHERE contract_id IS NULL) AS needs_contract_id,
			COUNT(*) FILTER (WHERE deel_timesheet_id IS NOT NULL) AS submitted
		FROM time_entries
	`, model.EntryStatusPending).Scan(&counters).Error
	if err != nil {
		return nil, err
	}

	var statusRows []struct {
		Status model.EntryStatus
		Count  int64
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM time_entries
		GROUP BY status
	`).Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}

	stats := &model.SubmitStats{
		Total:           counters.Total,
		ReadyToSubmit:   counters.ReadyToSubmit,
		NeedsContractID: counters.NeedsContractID,
		Submitted:       counters.Submitted,
		ByStatus:        make(map[model.EntryStatus]int64, len(statusRows)),
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
	}
	return stats, nil
}

type reportRow struct {
	EntryDate       time.Time
	Email           *string
	Category        string
	Hours           int
	Minutes         int
	Status          model.EntryStatus
	ContractID      *string
	DeelTimesheetID *string
}

// ListForReport returns the report rows for [from, to) grouped by status,
// each group ordered by entry date.
func (r *EntryRepository) ListForReport(
	ctx context.Context,
	from, to time.Time,
) ([]model.StatusGroup, error) {
	var rows []reportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			e.entry_date,
			COALESCE(p.email, e.email) AS email,
			e.category,
			e.hours,
			e.minutes,
			e.status,
			e.contract_id,
			e.deel_timesheet_id
		FROM time_entries e
		LEFT JOIN profiles p ON p.user_id = e.user_id
		WHERE e.entry_date >= ? AND e.entry_date < ?
		ORDER BY e.status ASC, e.entry_date ASC, e.created_at ASC
	`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var groups []model.StatusGroup
	index := make(map[model.EntryStatus]int)
	for _, row := range rows {
		pos, ok := index[row.Status]
		if !ok {
			groups = append(groups, model.StatusGroup{Status: row.Status})
			pos = len(groups) - 1
			index[row.Status] = pos
		}
		detail := model.ReportRow{
			EntryDate:       row.EntryDate,
			Email:           row.Email,
			Category:        row.Category,
			Hours:           row.Hours,
			Minutes:         row.Minutes,
			ContractID:      row.ContractID,
			DeelTimesheetID: row.DeelTimesheetID,
		}
		groups[pos].Rows = append(groups[pos].Rows, detail)
		groups[pos].EntryCount++
		groups[pos].TotalHours += detail.Quantity()
	}
	return groups, nil
}
