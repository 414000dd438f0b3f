package permissions

import (
	"testing"
)

func TestNewPermissionChecker(t *testing.T) {
	pc := NewPermissionChecker()

	if pc == nil {
		t.Fatal("Expected PermissionChecker to be created")
	}
}

func TestCheckAccessibilityPermission(t *testing.T) {
	pc := NewPermissionChecker()

	status := pc.CheckAccessibilityPermission()

	if status != PermissionAuthorized && status != PermissionDenied {
		t.Errorf("Expected Authorized or Denied, got %v", status)
	}
}

func TestAreAllPermissionsGranted(t *testing.T) {
	tests := []struct {
		status PermissionStatus
		want   bool
	}{
		{PermissionAuthorized, true},
		{PermissionDenied, false},
		{PermissionNotDetermined, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			pc := &PermissionChecker{accessibility: func() PermissionStatus { return tt.status }}

			if got := pc.AreAllPermissionsGranted(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got := pc.CheckAllPermissions()[Accessibility]; got != tt.want {
				t.Errorf("Expected accessibility %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPermissionStatusString(t *testing.T) {
	tests := []struct {
		status   PermissionStatus
		expected string
	}{
		{PermissionNotDetermined, "NotDetermined"},
		{PermissionDenied, "Denied"},
		{PermissionAuthorized, "Authorized"},
		{PermissionStatus(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
