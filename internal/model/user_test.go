package model

import "testing"

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleAdmin, true},
		{RoleMember, false},
		// Unknown roles fail-closed.
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		u := User{Role: tt.role}
		if got := u.IsAdmin(); got != tt.expected {
			t.Errorf("IsAdmin() with role %q = %v, want %v", tt.role, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{"Alice", "alice@example.com", "Alice"},
		{"", "alice@example.com", "alice@example.com"},
	}

	for _, tt := range tests {
		u := User{Name: tt.name, Email: tt.email}
		if got := u.DisplayName(); got != tt.expected {
			t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
		}
	}
}

func TestIssueLogOpen(t *testing.T) {
	l := IssueLog{}
	if !l.Open() {
		t.Error("loan with no deposit date should be open")
	}

	now := l.IssuedDate
	l.DepositDate = &now
	if l.Open() {
		t.Error("loan with a deposit date should be closed")
	}
}
