package domain

import "testing"

func TestChannelHelpers(t *testing.T) {
	if got := ActivityChannel("c1"); got != "agent_activity:c1" {
		t.Errorf("ActivityChannel = %q, want agent_activity:c1", got)
	}
	if got := ResultsChannel("c1"); got != "agent_results:c1" {
		t.Errorf("ResultsChannel = %q, want agent_results:c1", got)
	}
}

func TestClientFromChannel(t *testing.T) {
	tests := []struct {
		channel  string
		wantID   string
		wantOK   bool
	}{
		{"agent_activity:client-7", "client-7", true},
		{"agent_results:client-7", "client-7", true},
		{"agent_activity:", "", false},
		{"agent_results:", "", false},
		{"other:client-7", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		id, ok := ClientFromChannel(tt.channel)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ClientFromChannel(%q) = (%q, %t), want (%q, %t)",
				tt.channel, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestNewProgressEvent(t *testing.T) {
	event := NewProgressEvent("Document Agent", "working", true)

	if event.Type != EventTypeActivity {
		t.Errorf("type = %s, want %s", event.Type, EventTypeActivity)
	}
	if event.Agent != "Document Agent" || event.Message != "working" || !event.IsError {
		t.Errorf("unexpected event fields: %+v", event)
	}
	if event.Timestamp == "" {
		t.Error("timestamp not set")
	}
}
