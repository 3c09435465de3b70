package domain

import "time"

// ToastKind selects the visual style of a transient notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is a fire-and-forget notification addressed to one session.
type Toast struct {
	SessionID string    `json:"-"`
	Kind      ToastKind `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}
