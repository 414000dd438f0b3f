//go:build !darwin

package permissions

func checkAccessibility() PermissionStatus {
	return PermissionAuthorized
}

func openAccessibilitySettings() error {
	return nil
}
