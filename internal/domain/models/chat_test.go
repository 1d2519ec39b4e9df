package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessages_JSONCarriesRole(t *testing.T) {
	msgs := Messages{
		&UserQueryMessage{ID: "1", Timestamp: 10, QueryText: "hello"},
		&AIResponseMessage{ID: "2", Timestamp: 11, Text: "hi"},
		&SystemMessage{ID: "3", Timestamp: 12, Text: "note"},
	}

	data, err := json.Marshal(msgs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	wantRoles := []string{"user", "ai", "system"}
	for i, m := range raw {
		if m["role"] != wantRoles[i] {
			t.Errorf("message %d role = %v, want %s", i, m["role"], wantRoles[i])
		}
	}
	if raw[0]["queryText"] != "hello" {
		t.Errorf("queryText not flattened: %v", raw[0])
	}
}

func TestMessages_UnmarshalDispatchesOnRole(t *testing.T) {
	input := `[
		{"role":"user","id":"1","timestamp":1,"queryText":"q","filesInfo":[{"name":"a.pdf","type":"application/pdf","size":3}]},
		{"role":"ai","id":"2","timestamp":2,"text":"Error: Failed to get AI response: boom"},
		{"role":"system","id":"3","timestamp":3,"text":"s"}
	]`

	var msgs Messages
	if err := json.Unmarshal([]byte(input), &msgs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d", len(msgs))
	}

	for i, m := range msgs {
		switch msg := m.(type) {
		case *UserQueryMessage:
			if i != 0 || msg.FilesInfo[0].Name != "a.pdf" {
				t.Errorf("unexpected user message at %d: %+v", i, msg)
			}
		case *AIResponseMessage:
			if i != 1 || !msg.IsError() {
				t.Errorf("unexpected ai message at %d: %+v", i, msg)
			}
		case *SystemMessage:
			if i != 2 {
				t.Errorf("unexpected system message at %d", i)
			}
		}
	}
}

func TestMessages_UnknownRoleRejected(t *testing.T) {
	var msgs Messages
	err := json.Unmarshal([]byte(`[{"role":"tool","id":"x"}]`), &msgs)
	if err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Errorf("expected unknown role error, got %v", err)
	}
}

func TestAIResponseMessage_IsError(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Error: Failed to get AI response: timeout", true},
		{"Error:", true},
		{"error: lowercase", false},
		{"The Error: is inside", false},
		{"", false},
	}
	for _, tt := range tests {
		m := &AIResponseMessage{Text: tt.text}
		if got := m.IsError(); got != tt.want {
			t.Errorf("IsError(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
