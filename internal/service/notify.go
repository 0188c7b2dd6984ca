package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

// Notifier creates notification records as a side effect of the order
// workflow. Every send is best-effort: a failure is logged and swallowed,
// never rolled into the primary operation's result. Callers must invoke
// it only after their own transaction has committed.
type Notifier struct {
	store *storage.Store
}

func NewNotifier(store *storage.Store) *Notifier {
	return &Notifier{store: store}
}

// OrderCreated tells every kitchen-staff user about a new order.
func (n *Notifier) OrderCreated(ctx context.Context, order *domain.Order, customerEmail string) {
	chefs, err := n.store.ListUsersByRole(ctx, domain.RoleChef)
	if err != nil {
		slog.ErrorContext(ctx, "notification fan-out: list chefs", "order_id", order.ID, "error", err)
		return
	}
	for _, chef := range chefs {
		n.send(ctx, chef.ID, domain.NotificationNewOrder,
			"Nouvelle commande",
			fmt.Sprintf("Nouvelle commande #%d de %s", order.ID, customerEmail),
			order.ID)
	}
}

// StatusChanged notifies the order's owner about the transition and, for
// the completed and ready states, fans out to the relevant role holders.
func (n *Notifier) StatusChanged(ctx context.Context, order *domain.Order) {
	n.send(ctx, order.UserID, domain.NotificationStatusChanged,
		"Changement de statut",
		fmt.Sprintf("Votre commande #%d est maintenant: %s", order.ID, order.Status.Label()),
		order.ID)

	switch order.Status {
	case domain.StatusCompleted:
		n.fanOut(ctx, domain.RoleChef, domain.NotificationDelivered,
			"Commande livrée",
			fmt.Sprintf("La commande #%d a été livrée avec succès. Total: %s DT",
				order.ID, order.Total.StringFixed(2)),
			order.ID)
	case domain.StatusReady:
		n.fanOut(ctx, domain.RoleServeur, domain.NotificationReadyForDelivery,
			"Commande prête à livrer",
			fmt.Sprintf("La commande #%d est prête pour la livraison. Total: %s DT",
				order.ID, order.Total.StringFixed(2)),
			order.ID)
	}
}

func (n *Notifier) fanOut(ctx context.Context, role, typ, title, message string, orderID int64) {
	users, err := n.store.ListUsersByRole(ctx, role)
	if err != nil {
		slog.ErrorContext(ctx, "notification fan-out: list users", "role", role, "order_id", orderID, "error", err)
		return
	}
	for _, user := range users {
		n.send(ctx, user.ID, typ, title, message, orderID)
	}
}

// send writes one notification in its own unit of work. Failures are
// logged only: the status change this notification describes has already
// committed and must not be disturbed.
func (n *Notifier) send(ctx context.Context, userID int64, typ, title, message string, orderID int64) {
	notification := &domain.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		OrderID:   &orderID,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		slog.ErrorContext(ctx, "create notification",
			"user_id", userID, "type", typ, "order_id", orderID, "error", err)
	}
}

// maxInboxPage bounds a single inbox read.
const maxInboxPage = 100

// Inbox returns the caller's most recent notifications, newest first.
func (n *Notifier) Inbox(ctx context.Context, user *domain.User, limit int) ([]*domain.Notification, error) {
	if limit < 1 || limit > maxInboxPage {
		limit = maxInboxPage
	}
	return n.store.ListNotificationsByUser(ctx, user.ID, limit)
}

// MarkRead flips a notification to read. Only the recipient may do so.
func (n *Notifier) MarkRead(ctx context.Context, user *domain.User, id int64) error {
	notif, err := n.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if notif.UserID != user.ID {
		return ErrForbidden
	}
	return n.store.MarkNotificationRead(ctx, id)
}

// Dismiss deletes a notification from the recipient's inbox.
func (n *Notifier) Dismiss(ctx context.Context, user *domain.User, id int64) error {
	notif, err := n.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if notif.UserID != user.ID {
		return ErrForbidden
	}
	return n.store.DeleteNotification(ctx, id)
}
