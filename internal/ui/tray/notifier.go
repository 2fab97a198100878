package tray

import (
	"focuspulse/internal/feedback"

	"fyne.io/fyne/v2"
)

// DesktopNotifier shows phase cues as desktop notifications.
type DesktopNotifier struct {
	app fyne.App
}

// NewDesktopNotifier returns a notifier posting through app.
func NewDesktopNotifier(app fyne.App) *DesktopNotifier {
	return &DesktopNotifier{app: app}
}

// Notify implements feedback.Notifier. Minute cues stay out of the
// notification center.
func (notifier *DesktopNotifier) Notify(kind feedback.Kind) {
	if kind == feedback.KindMinute || notifier.app == nil {
		return
	}
	notifier.app.SendNotification(fyne.NewNotification("focuspulse", feedback.Message(kind)))
}
