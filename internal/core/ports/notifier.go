package ports

import "github.com/civicpulse/grievance-portal/internal/core/domain"

// Notifier accepts toasts for asynchronous delivery. Notify never blocks and
// never reports failure to the caller.
type Notifier interface {
	Notify(toast domain.Toast)
}
