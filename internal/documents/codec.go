package documents

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// The analyzer's collection fields are stored as jsonb. These two function
// pairs are the only serialize/deserialize boundary; decoding always yields
// non-nil code/task slices while patient info stays optional.

func encodeCodes(codes []ClinicalCode) ([]byte, error) {
	if codes == nil {
		codes = []ClinicalCode{}
	}
	data, err := json.Marshal(codes)
	if err != nil {
		return nil, fmt.Errorf("encode clinical codes: %w", err)
	}
	return data, nil
}

func decodeCodes(raw sql.NullString) ([]ClinicalCode, error) {
	codes := []ClinicalCode{}
	if !raw.Valid || raw.String == "" {
		return codes, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &codes); err != nil {
		return nil, fmt.Errorf("decode clinical codes: %w", err)
	}
	if codes == nil {
		codes = []ClinicalCode{}
	}
	return codes, nil
}

func encodeTasks(tasks []SuggestedTask) ([]byte, error) {
	if tasks == nil {
		tasks = []SuggestedTask{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode suggested tasks: %w", err)
	}
	return data, nil
}

func decodeTasks(raw sql.NullString) ([]SuggestedTask, error) {
	tasks := []SuggestedTask{}
	if !raw.Valid || raw.String == "" {
		return tasks, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &tasks); err != nil {
		return nil, fmt.Errorf("decode suggested tasks: %w", err)
	}
	if tasks == nil {
		tasks = []SuggestedTask{}
	}
	return tasks, nil
}

// encodePatientInfo returns nil for absent patient info so the column stays
// SQL NULL rather than the JSON literal "null".
func encodePatientInfo(info *PatientInfo) ([]byte, error) {
	if info == nil {
		return nil, nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode patient info: %w", err)
	}
	return data, nil
}

func decodePatientInfo(raw sql.NullString) (*PatientInfo, error) {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil, nil
	}
	var info PatientInfo
	if err := json.Unmarshal([]byte(raw.String), &info); err != nil {
		return nil, fmt.Errorf("decode patient info: %w", err)
	}
	return &info, nil
}
