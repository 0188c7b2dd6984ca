package httpx

import (
	"time"

	"github.com/restoflow/restoflow/internal/domain"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	Vote  *int     `json:"vote,omitempty"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type VoteRequest struct {
	Vote int `json:"vote"`
}

type CreateOrderRequest struct {
	Items []CreateOrderItemDTO `json:"items"`
}

type CreateOrderItemDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateItemRequest carries the new quantity for one line item. The
// pointer distinguishes an absent field from an explicit 0: only the
// latter is a removal.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type OrderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	Status    string              `json:"status"`
	Label     string              `json:"statusLabel"`
	Total     string              `json:"total"`
	Items     []OrderItemResponse `json:"items"`
	Invoice   *InvoiceResponse    `json:"invoice,omitempty"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at,omitempty"`
}

type OrderItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type InvoiceResponse struct {
	Number    string `json:"number"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type PaymentRequest struct {
	OrderID int64   `json:"order_id"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method,omitempty"`
}

type PaymentResponse struct {
	OrderID       int64  `json:"order_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	PaymentStatus string `json:"payment_status"`
	Reference     string `json:"reference"`
	Timestamp     string `json:"timestamp"`
}

type PaymentStatusResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
	Paid    bool   `json:"paid"`
}

type NotificationResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	OrderID   *int64 `json:"order_id,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type TableResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	IsAvailable bool   `json:"isAvailable"`
	PositionX   int    `json:"positionX"`
	PositionY   int    `json:"positionY"`
}

type StartSessionRequest struct {
	TableID int64 `json:"table_id"`
	GuestID int64 `json:"guest_id"`
}

type SessionResponse struct {
	ID        int64  `json:"id"`
	TableID   int64  `json:"table_id"`
	UserID    int64  `json:"user_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapUserToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Roles: u.Roles,
		Vote:  u.Vote,
	}
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Label:     o.Status.Label(),
		Total:     o.Total.StringFixed(2),
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	if o.UpdatedAt != nil {
		resp.UpdatedAt = o.UpdatedAt.Format(time.RFC3339)
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}
	if o.Invoice != nil {
		resp.Invoice = &InvoiceResponse{
			Number:    o.Invoice.Number,
			Amount:    o.Invoice.Amount.StringFixed(2),
			CreatedAt: o.Invoice.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}

func mapOrdersToResponse(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrderToResponse(o))
	}
	return out
}

func mapNotificationToResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		OrderID:   n.OrderID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func mapTableToResponse(t *domain.Table) TableResponse {
	return TableResponse{
		ID:          t.ID,
		Name:        t.Name,
		Capacity:    t.Capacity,
		IsAvailable: t.IsAvailable,
		PositionX:   t.PositionX,
		PositionY:   t.PositionY,
	}
}

func mapSessionToResponse(s *domain.TableSession) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID,
		TableID:   s.TableID,
		UserID:    s.UserID,
		StartTime: s.StartTime.Format(time.RFC3339),
	}
	if s.EndTime != nil {
		resp.EndTime = s.EndTime.Format(time.RFC3339)
	}
	return resp
}
