package source

import "encoding/json"

// BackupVersion is written to every backup document.
const BackupVersion = 1

// RawBackup is the backup document. Key names follow the browser storage
// keys of the first version of the app, so its exports load unchanged.
type RawBackup struct {
	Version         int             `json:"version,omitempty"`
	ExportedAt      string          `json:"exportedAt,omitempty"`
	Expenses        []RawExpense    `json:"expenses"`
	Budget          json.RawMessage `json:"budget,omitempty"`
	ProjectDuration json.RawMessage `json:"projectDuration,omitempty"`
}

// RawExpense is one expense as stored in a backup. ID and Amount may be
// numbers or strings; File may be a string, an object or null.
type RawExpense struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Amount   json.RawMessage `json:"amount"`
	Date     string          `json:"date"`
	File     json.RawMessage `json:"file"`
}

// rawFile is the object form of an attachment.
type rawFile struct {
	Name string `json:"name"`
}

// SkippedRecord describes a backup or CSV record that was not imported.
type SkippedRecord struct {
	Index int    // 0-based record index, or 1-based line number for CSV
	ID    string // original id, if any
	Err   error
}

func (s SkippedRecord) Error() string {
	if s.ID != "" {
		return "record " + s.ID + ": " + s.Err.Error()
	}
	return s.Err.Error()
}
