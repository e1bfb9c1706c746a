package wager

import (
	"encoding/json"
	"fmt"
	"time"
)

// DecodeRecords reads a persisted ledger, migrating entries written in older
// shapes and re-normalizing every record.
func DecodeRecords(data []byte, now time.Time) ([]Record, error) {
	var raw []Payload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	out := make([]Record, 0, len(raw))
	for _, p := range raw {
		out = append(out, Normalize(Migrate(p), now))
	}
	return out, nil
}

// EncodeRecords is the persisted form of a ledger.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}
