package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{
			name:    "same content produces same ID",
			content: []byte("test content"),
		},
		{
			name:    "empty content",
			content: []byte{},
		},
		{
			name:    "binary content",
			content: []byte{0x00, 0xff, 0x10, 0x20, 0x00},
		},
		{
			name:    "long content",
			content: []byte("This is a much longer piece of content that should still hash consistently"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent([]byte("content1"))
	id2 := IDFromContent([]byte("content2"))

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestDocumentStatus_String(t *testing.T) {
	tests := []struct {
		name   string
		status DocumentStatus
		want   string
	}{
		{
			name:   "processing",
			status: StatusProcessing,
			want:   "processing",
		},
		{
			name:   "ready",
			status: StatusReady,
			want:   "ready",
		},
		{
			name:   "failed",
			status: StatusFailed,
			want:   "failed",
		},
		{
			name:   "unknown value",
			status: DocumentStatus(999),
			want:   "unknown",
		},
		{
			name:   "zero value",
			status: DocumentStatus(0),
			want:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.status.String()
			if got != tt.want {
				t.Errorf("DocumentStatus.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChatRole_String(t *testing.T) {
	tests := []struct {
		name string
		role ChatRole
		want string
	}{
		{
			name: "user",
			role: RoleUser,
			want: "user",
		},
		{
			name: "assistant",
			role: RoleAssistant,
			want: "assistant",
		},
		{
			name: "unknown value",
			role: ChatRole(42),
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.role.String()
			if got != tt.want {
				t.Errorf("ChatRole.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
