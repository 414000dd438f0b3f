package notification

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/yok-tottii/typo/internal/logger"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	// TypeInfo is an informational notification
	TypeInfo NotificationType = "info"
	// TypeWarning is a warning notification
	TypeWarning NotificationType = "warning"
	// TypeError is an error notification
	TypeError NotificationType = "error"
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
}

// NotificationManager sends desktop notifications without blocking the caller
type NotificationManager struct {
	appName string
	log     logger.Interface

	// backends, replaced in tests
	notify func(title, message string) error
	beep   func() error

	wg sync.WaitGroup
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(appName string, log logger.Interface) *NotificationManager {
	if log == nil {
		log = logger.Nop{}
	}
	beeep.AppName = appName
	return &NotificationManager{
		appName: appName,
		log:     log,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// Send delivers a notification synchronously
func (nm *NotificationManager) Send(notification *Notification) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}
	title := notification.Title
	if title == "" {
		title = nm.appName
	}
	if err := nm.notify(title, notification.Message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Notify sends an informational notification in the background
func (nm *NotificationManager) Notify(title, message string) {
	nm.async(&Notification{Title: title, Message: message, Type: TypeInfo})
}

// Warn sends a warning notification in the background
func (nm *NotificationManager) Warn(message string) {
	nm.async(&Notification{Message: message, Type: TypeWarning})
}

// Error sends an error notification in the background
func (nm *NotificationManager) Error(message string) {
	nm.async(&Notification{Message: message, Type: TypeError})
}

// Beep plays the system beep in the background
func (nm *NotificationManager) Beep() {
	nm.wg.Add(1)
	go func() {
		defer nm.wg.Done()
		if err := nm.beep(); err != nil {
			nm.log.Debug("Beep failed: %v", err)
		}
	}()
}

// Wait blocks until pending notifications are delivered
func (nm *NotificationManager) Wait() {
	nm.wg.Wait()
}

func (nm *NotificationManager) async(n *Notification) {
	nm.wg.Add(1)
	go func() {
		defer nm.wg.Done()
		if err := nm.Send(n); err != nil {
			// Fails in headless environments
			nm.log.Warn("%v (%s: %s)", err, n.Type, n.Message)
		}
	}()
}
