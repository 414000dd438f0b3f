package permissions

// PermissionStatus represents the status of a system permission
type PermissionStatus int

const (
	// PermissionNotDetermined means the user hasn't been asked yet
	PermissionNotDetermined PermissionStatus = 0
	// PermissionDenied means the user has explicitly denied the permission
	PermissionDenied PermissionStatus = 2
	// PermissionAuthorized means the user has authorized the permission
	PermissionAuthorized PermissionStatus = 3
)

// Accessibility is the permission synthetic copy/paste keystrokes need
const Accessibility = "accessibility"

// PermissionChecker reports system permissions. On platforms without a
// permission model every check reports authorized.
type PermissionChecker struct {
	accessibility func() PermissionStatus
}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{accessibility: checkAccessibility}
}

// CheckAccessibilityPermission checks if the application may send synthetic input
func (pc *PermissionChecker) CheckAccessibilityPermission() PermissionStatus {
	return pc.accessibility()
}

// IsAccessibilityAuthorized returns whether accessibility permission is granted
func (pc *PermissionChecker) IsAccessibilityAuthorized() bool {
	return pc.CheckAccessibilityPermission() == PermissionAuthorized
}

// RequestAccessibilityPermission opens the system settings page for accessibility
func (pc *PermissionChecker) RequestAccessibilityPermission() error {
	return openAccessibilitySettings()
}

// CheckAllPermissions checks every permission the app relies on
func (pc *PermissionChecker) CheckAllPermissions() map[string]bool {
	return map[string]bool{
		Accessibility: pc.IsAccessibilityAuthorized(),
	}
}

// AreAllPermissionsGranted returns whether all required permissions are granted
func (pc *PermissionChecker) AreAllPermissionsGranted() bool {
	for _, granted := range pc.CheckAllPermissions() {
		if !granted {
			return false
		}
	}
	return true
}

// String returns the string representation of the status
func (ps PermissionStatus) String() string {
	switch ps {
	case PermissionNotDetermined:
		return "NotDetermined"
	case PermissionDenied:
		return "Denied"
	case PermissionAuthorized:
		return "Authorized"
	default:
		return "Unknown"
	}
}
