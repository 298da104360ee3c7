package events

import (
	"encoding/json"
	"testing"
)

func TestEncodeEnvelope(t *testing.T) {
	body, err := Encode(TimeLogCreated, map[string]any{"time_log_id": 3, "amount": 100})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TimeLogCreated {
		t.Errorf("type = %q", got.Type)
	}
	if got.Data["amount"].(float64) != 100 {
		t.Errorf("data = %v", got.Data)
	}
}
