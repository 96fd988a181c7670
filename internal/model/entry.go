package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EntryStatus string

const (
	EntryStatusPending    EntryStatus = "pending"
	EntryStatusProcessing EntryStatus = "processing"
	EntryStatusSent       EntryStatus = "sent"
	EntryStatusFailed     EntryStatus = "failed"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitionSources lists, per target status, the statuses an entry must
// currently hold for the transition to be legal. failed -> processing is
// allowed so a manual re-run over failed entries can pick them up again.
var transitionSources = map[EntryStatus][]EntryStatus{
	EntryStatusProcessing: {EntryStatusPending, EntryStatusFailed},
	EntryStatusSent:       {EntryStatusProcessing},
	EntryStatusFailed:     {EntryStatusProcessing},
}

// TransitionSources returns the statuses from which target is reachable.
func TransitionSources(target EntryStatus) []EntryStatus {
	return transitionSources[target]
}

func ParseEntryStatus(raw string) (EntryStatus, error) {
	switch EntryStatus(raw) {
	case EntryStatusPending, EntryStatusProcessing, EntryStatusSent, EntryStatusFailed:
		return EntryStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown entry status %q", raw)
	}
}

// TimeEntry is a recorded unit of worked time pending correlation with a
// Deel contract and submission as a timesheet. Entries are created by the
// ingestion flow; this service only ever sets ContractID, Status and
// DeelTimesheetID.
type TimeEntry struct {
	ID              uuid.UUID
	UserID          *uuid.UUID
	Email           *string
	Hours           int
	Minutes         int
	Category        string
	Notes           *string
	Count           *int
	EntryDate       time.Time
	Status          EntryStatus
	ContractID      *string
	DeelTimesheetID *string
	CreatedAt       time.Time
}

// Quantity converts the stored hour/minute integers to decimal hours.
func (e TimeEntry) Quantity() float64 {
	return float64(e.Hours) + float64(e.Minutes)/60
}

// Description builds the timesheet description from category, notes and count.
func (e TimeEntry) Description() string {
	desc := e.Category
	if e.Notes != nil && *e.Notes != "" {
		desc += " - " + *e.Notes
	}
	if e.Count != nil && *e.Count != 0 {
		desc += fmt.Sprintf(" (Count: %d)", *e.Count)
	}
	return desc
}

// DateString formats the entry date as YYYY-MM-DD for the Deel API.
func (e TimeEntry) DateString() string {
	return e.EntryDate.Format("2006-01-02")
}

// SyncCandidate is a time entry selected for contract correlation, carrying
// the linked user's profile email when one exists.
type SyncCandidate struct {
	ID           uuid.UUID
	Email        *string
	ProfileEmail *string
	ContractID   *string
}

// LookupEmail resolves the email used for contract matching. The linked
// user's profile email wins over the entry's own denormalized email.
func (c SyncCandidate) LookupEmail() string {
	if c.ProfileEmail != nil && *c.ProfileEmail != "" {
		return *c.ProfileEmail
	}
	if c.Email != nil {
		return *c.Email
	}
	return ""
}
