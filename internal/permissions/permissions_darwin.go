//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework ApplicationServices

#include <ApplicationServices/ApplicationServices.h>

int check_accessibility_permission() {
    Boolean isAccessibilityEnabled = AXIsProcessTrusted();
    return isAccessibilityEnabled ? 1 : 0;
}
*/
import "C"

import (
	"os/exec"
)

func checkAccessibility() PermissionStatus {
	if C.check_accessibility_permission() == 1 {
		return PermissionAuthorized
	}
	return PermissionDenied
}

func openAccessibilitySettings() error {
	url := "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"
	return exec.Command("open", url).Run()
}
