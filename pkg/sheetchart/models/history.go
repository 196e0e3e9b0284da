package models

import (
	"encoding/json"
	"time"
)

// HistoryDateLayout is the ISO-8601 layout used for persisted upload dates.
const HistoryDateLayout = "2006-01-02T15:04:05.000Z07:00"

// HistoryEntry is one past upload, sufficient to rebuild the original file.
type HistoryEntry struct {
	// Name is the original file name.
	Name string
	// Date is when the entry was appended.
	Date time.Time
	// Payload is the base64 encoding of the original file bytes.
	Payload string
}

// Reloadable reports whether the entry carries enough data to be replayed.
func (e HistoryEntry) Reloadable() bool {
	return e.Name != "" && e.Payload != ""
}

type historyEntryJSON struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Base64 string `json:"base64"`
}

// MarshalJSON writes {name, date, base64} with the date in UTC.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyEntryJSON{
		Name:   e.Name,
		Date:   e.Date.UTC().Format(HistoryDateLayout),
		Base64: e.Payload,
	})
}

// UnmarshalJSON reads {name, date, base64}. The date must be RFC 3339.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw historyEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(time.RFC3339Nano, raw.Date)
	if err != nil {
		return err
	}
	*e = HistoryEntry{Name: raw.Name, Date: date, Payload: raw.Base64}
	return nil
}
