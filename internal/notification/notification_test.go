package notification

import (
	"errors"
	"sync"
	"testing"
)

type sent struct {
	title, message string
}

func newTestManager() (*NotificationManager, *[]sent, *int, *sync.Mutex) {
	var mu sync.Mutex
	var got []sent
	beeps := 0

	nm := NewNotificationManager("TestApp", nil)
	nm.notify = func(title, message string) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, sent{title, message})
		return nil
	}
	nm.beep = func() error {
		mu.Lock()
		defer mu.Unlock()
		beeps++
		return nil
	}
	return nm, &got, &beeps, &mu
}

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager("TestApp", nil)

	if nm == nil {
		t.Fatal("Expected notification manager to be created")
	}

	if nm.appName != "TestApp" {
		t.Errorf("Expected appName to be TestApp, got %s", nm.appName)
	}
}

func TestSendNilNotification(t *testing.T) {
	nm, _, _, _ := newTestManager()

	if err := nm.Send(nil); err == nil {
		t.Error("Expected error when sending nil notification")
	}
}

func TestSendDefaultsTitle(t *testing.T) {
	nm, got, _, _ := newTestManager()

	if err := nm.Send(&Notification{Message: "hello", Type: TypeInfo}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(*got) != 1 || (*got)[0].title != "TestApp" {
		t.Errorf("Expected app name as title, got %+v", *got)
	}
}

func TestSendWrapsBackendError(t *testing.T) {
	nm, _, _, _ := newTestManager()
	boom := errors.New("no dbus")
	nm.notify = func(string, string) error { return boom }

	err := nm.Send(&Notification{Title: "t", Message: "m"})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped backend error, got %v", err)
	}
}

func TestNotifyIsAsync(t *testing.T) {
	nm, got, beeps, mu := newTestManager()

	nm.Notify("Typo", "Configuration reloaded.")
	nm.Warn("careful")
	nm.Error("failed")
	nm.Beep()
	nm.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(*got) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(*got))
	}
	if *beeps != 1 {
		t.Errorf("Expected 1 beep, got %d", *beeps)
	}
	for _, n := range *got {
		if n.title == "" {
			t.Errorf("Notification without title: %+v", n)
		}
	}
}

func TestNotifyFailureDoesNotPanic(t *testing.T) {
	nm, _, _, _ := newTestManager()
	nm.notify = func(string, string) error { return errors.New("headless") }
	nm.beep = func() error { return errors.New("no sound") }

	nm.Notify("Typo", "x")
	nm.Beep()
	nm.Wait()
}

func TestNotificationType(t *testing.T) {
	types := []NotificationType{TypeInfo, TypeWarning, TypeError}

	for _, nt := range types {
		if nt == "" {
			t.Errorf("Notification type should not be empty")
		}
	}
}
