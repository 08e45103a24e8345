package mul

import (
	"encoding/json"
	"fmt"

	"github.com/mechdex/mechdex/internal/model"
)

type quickListEnvelope struct {
	Units []json.RawMessage `json:"Units"`
}

// ParseQuickList decodes a QuickList document into registry units.
// Both shapes the MUL produces are accepted: the wrapped form
// {"Units":[...]} our fetcher writes to disk and the bare array the
// server returns directly.
func ParseQuickList(data []byte) ([]model.RegistryUnit, error) {
	raw, err := decodeQuickListRaw(data)
	if err != nil {
		return nil, err
	}

	units := make([]model.RegistryUnit, 0, len(raw))
	for i, msg := range raw {
		var u model.RegistryUnit
		if err := json.Unmarshal(msg, &u); err != nil {
			return nil, fmt.Errorf("failed to parse QuickList unit at index %d: %w", i, err)
		}
		units = append(units, u)
	}
	return units, nil
}

// decodeQuickListRaw extracts the unit array without committing to a
// unit schema, so the fetcher can pass listings through verbatim.
func decodeQuickListRaw(data []byte) ([]json.RawMessage, error) {
	var env quickListEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Units != nil {
		return env.Units, nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("failed to parse QuickList document: %w", err)
	}
	return arr, nil
}
