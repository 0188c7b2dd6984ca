package domain

import "time"

// Notification type tags. Free-form strings on the wire; these are the
// values the order and payment workflows emit.
const (
	NotificationNewOrder         = "new_order"
	NotificationStatusChanged    = "order_status_changed"
	NotificationReadyForDelivery = "order_ready_for_delivery"
	NotificationDelivered        = "order_delivered"
)

// Notification targets one user. OrderID is a weak reference: the order
// may be deleted later without cascading here.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	OrderID   *int64
	IsRead    bool
	CreatedAt time.Time
}
