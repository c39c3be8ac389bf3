package model

// NotificationType classifies a user-facing message.
type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
)

// Notification is the single current user-facing message. Every lifecycle
// event overwrites it; it auto-expires after a fixed delay.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
	TxHash  string           `json:"tx_hash,omitempty"`
}
