package panel

import (
	"fmt"
	"strings"

	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/syncaction"
)

// SyncMessages returns the notification title and texts for a sync job on
// target. The panels, the dashboard and the CLI all word syncs this way.
func SyncMessages(target record.SyncTarget) (string, syncaction.Messages) {
	if target == record.SyncAll {
		return "Full sync", syncaction.Messages{
			Start:        "Starting full historical sync...",
			Success:      "Full sync completed",
			FailureTitle: "Error in full sync",
		}
	}
	label := string(target)
	title := label
	if label != "" {
		title = strings.ToUpper(label[:1]) + label[1:]
	}
	return title, syncaction.Messages{
		Start:        fmt.Sprintf("Syncing %s...", label),
		Success:      fmt.Sprintf("%s synchronized", title),
		FailureTitle: fmt.Sprintf("Error syncing %s", label),
	}
}

// CleanupMessages returns the notification title and texts for the cleanup
// job. Success uses the backend's own message.
func CleanupMessages() (string, syncaction.Messages) {
	return "Cleanup", syncaction.Messages{
		Start:        "Cleaning database...",
		FailureTitle: "Error cleaning database",
	}
}
