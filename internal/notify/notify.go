// Package notify sends desktop notifications for study events.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop shows tracker events as desktop notifications.
type Desktop struct {
	send func(title, message string) error
}

func NewDesktop(appName string) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Desktop{send: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

func (d *Desktop) Notify(title, message string) error {
	if err := d.send(title, message); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	return nil
}
