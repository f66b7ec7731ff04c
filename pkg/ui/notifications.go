package ui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"igreport/pkg/config"
	"igreport/pkg/errors"
	"igreport/pkg/stats"
)

// Notification types accepted in config
const (
	NotifyTerminal = "terminal"
	NotifyDesktop  = "desktop"
	NotifyBoth     = "both"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igreport").Show($toast)
	`, xmlEscape(title), xmlEscape(message))

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

// PlatformSender returns the sender for the current OS, or nil
func PlatformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// Notifier announces scan outcomes according to the notification settings
type Notifier struct {
	cfg    config.NotificationConfig
	out    io.Writer
	sender NotificationSender
}

// NewNotifier creates a notifier. A nil sender disables desktop delivery.
func NewNotifier(cfg config.NotificationConfig, out io.Writer, sender NotificationSender) *Notifier {
	return &Notifier{cfg: cfg, out: out, sender: sender}
}

func (n *Notifier) terminal() bool {
	return n.cfg.NotificationType == NotifyTerminal || n.cfg.NotificationType == NotifyBoth || n.cfg.NotificationType == ""
}

func (n *Notifier) desktop() bool {
	return n.sender != nil && (n.cfg.NotificationType == NotifyDesktop || n.cfg.NotificationType == NotifyBoth)
}

func (n *Notifier) send(color func(string) string, title, message string) {
	if n.terminal() {
		fmt.Fprintf(n.out, "\n%s: %s\n", color(title), message)
	}
	if n.desktop() {
		// Desktop notifications are best effort
		_ = n.sender.Send(title, message)
	}
}

// ScanComplete reports a finished scan
func (n *Notifier) ScanComplete(result *stats.ProfileStats) {
	if !n.cfg.Enabled || !n.cfg.OnComplete || result == nil {
		return
	}
	n.send(Green, "Scan complete", fmt.Sprintf("@%s: %d posts analysed", result.Username, result.SampleSize))
}

// ScanFailed reports a failed scan. Throttling is governed by OnRateLimit,
// everything else by OnError.
func (n *Notifier) ScanFailed(username string, err error) {
	if !n.cfg.Enabled || err == nil {
		return
	}

	message := errors.Guidance(err)
	if message == "" {
		message = err.Error()
	}

	if errors.IsRemoteBlocked(err) {
		if n.cfg.OnRateLimit {
			n.send(Yellow, "Instagram is throttling", message)
		}
		return
	}
	if !n.cfg.OnError {
		return
	}
	title := "Scan failed"
	if errors.IsProfileUnavailable(err) {
		title = "Profile unavailable"
	}
	n.send(Red, title, message)
}
