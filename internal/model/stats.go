package model

// StatusPair splits the entry count for one status by contract resolution.
type StatusPair struct {
	WithContract    int64 `json:"withContract"`
	WithoutContract int64 `json:"withoutContract"`
}

// SyncStats summarizes time entries by contract sync state.
type SyncStats struct {
	Total           int64                      `json:"total"`
	WithContract    int64                      `json:"withContract"`
	WithoutContract int64                      `json:"withoutContract"`
	ByStatus        map[EntryStatus]StatusPair `json:"byStatus"`
}

// SubmitStats summarizes time entries by submission state. ReadyToSubmit
// counts pending entries with a contract id and no timesheet id;
// NeedsContractID counts entries the sync stage has not resolved yet.
type SubmitStats struct {
	Total           int64                 `json:"total"`
	ReadyToSubmit   int64                 `json:"readyToSubmit"`
	NeedsContractID int64                 `json:"needsContractId"`
	Submitted       int64                 `json:"submitted"`
	ByStatus        map[EntryStatus]int64 `json:"byStatus"`
}
