// Package orders holds the order domain types shared by the operations tooling.
package orders

// ID uniquely identifies an order in the platform data service.
// IDs are opaque; the tooling never parses or generates them.
type ID string

// Status is an order lifecycle state as stored by the platform.
type Status string

// Order lifecycle states.
const (
	StatusPending         Status = "pending"
	StatusPendingApproval Status = "pending_approval"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusRefunded        Status = "refunded"
)

// String returns the status as stored in the backend.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is a known order status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// AllStatuses returns every known order status in display order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusPendingApproval,
		StatusCompleted,
		StatusCancelled,
		StatusRefunded,
	}
}
