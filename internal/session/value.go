package session

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// record is the durable shape of one entry: the key is stored alongside
// the value so rows are self-describing when inspected directly.
type record struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value"`
}

// Normalize round-trips v through JSON so that every value held in the
// cache or compared for change detection lives in the same model:
// float64, string, bool, nil, map[string]interface{}, []interface{}.
// Without this an int written by one caller and the float64 read back
// from storage would count as a change and re-trigger persistence.
func Normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("session: value not serializable: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("session: value not serializable: %w", err)
	}
	return out, nil
}

// Equal reports deep equality between two normalized values.
func Equal(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

func encodeRecord(key string, value interface{}) ([]byte, error) {
	return json.Marshal(record{ID: key, Value: value})
}

func decodeRecord(b []byte) (interface{}, error) {
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("session: decode record: %w", err)
	}
	return rec.Value, nil
}
