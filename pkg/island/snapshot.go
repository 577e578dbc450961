package island

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one island instance in a page snapshot.
type Entry struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	State   State   `json:"state"`
	Actions Actions `json:"actions"`
}

// Snapshot is the JSON document embedded in the page under StateScriptID.
type Snapshot struct {
	Islands []Entry `json:"islands"`
}

// Encode validates and marshals the snapshot. The output escapes <, > and &
// so it can be placed inside a script element verbatim.
func (s Snapshot) Encode() ([]byte, error) {
	seen := make(map[string]bool, len(s.Islands))
	for _, e := range s.Islands {
		if seen[e.Key] {
			return nil, fmt.Errorf("duplicate island key %q", e.Key)
		}
		seen[e.Key] = true
		if err := e.State.Validate(); err != nil {
			return nil, fmt.Errorf("island %s (key %s): %w", e.Name, e.Key, err)
		}
	}

	if s.Islands == nil {
		s.Islands = []Entry{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses an encoded snapshot. Numbers are kept as
// json.Number so integers round-trip without passing through float64.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	for i := range s.Islands {
		if s.Islands[i].State == nil {
			s.Islands[i].State = State{}
		}
	}
	return s, nil
}
