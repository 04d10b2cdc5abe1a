package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderhub/pkg/apperr"
	"orderhub/pkg/logging"
	"orderhub/pkg/principal"
	"orderhub/pkg/resilience"
	"orderhub/services/order/internal/cache"
	"orderhub/services/order/internal/client"
	"orderhub/services/order/internal/lifecycle"
	"orderhub/services/order/internal/models"
	"orderhub/services/order/internal/repo"
	"orderhub/services/order/internal/search"
	"orderhub/services/order/internal/transport"
)

// UserDirectory is the slice of the user service the order service needs.
type UserDirectory interface {
	Exists(ctx context.Context, id uint) (bool, error)
	GetUser(ctx context.Context, id uint) (*client.User, error)
}

// Publisher emits domain events after the primary transaction commits.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Searcher mirrors committed orders into the search index.
type Searcher interface {
	IndexOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id uint) error
	Search(ctx context.Context, query, status string, limit int) ([]search.OrderDoc, error)
}

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uint      `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uint      `json:"userId"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type OrderService struct {
	Repo   *repo.GormRepo
	Users  UserDirectory
	Cache  *cache.UserCache
	Search Searcher
	Events Publisher

	userDep *resilience.Dependency
}

func New(r *repo.GormRepo, users UserDirectory, userCache *cache.UserCache, searcher Searcher, events Publisher) *OrderService {
	return &OrderService{
		Repo:    r,
		Users:   users,
		Cache:   userCache,
		Search:  searcher,
		Events:  events,
		userDep: resilience.New("user-service"),
	}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

func buildItems(in []transport.OrderItemRequest) ([]models.OrderItem, error) {
	if len(in) == 0 {
		return nil, apperr.ErrValidation.WithMessage("order must contain at least one item")
	}

	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		if it.ProductName == "" {
			return nil, apperr.ErrValidation.WithMessage("productName is required")
		}
		if it.Quantity <= 0 {
			return nil, apperr.ErrValidation.WithMessage("quantity must be positive")
		}
		if it.UnitPrice < 0 {
			return nil, apperr.ErrValidation.WithMessage("unitPrice must not be negative")
		}
		items = append(items, models.OrderItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  float64(it.Quantity) * it.UnitPrice,
		})
	}
	return items, nil
}

func (s *OrderService) Create(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*transport.OrderResponse, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	// When the user service is unreachable the order is accepted anyway; a
	// reachable service answering "no such user" is a hard reject.
	exists, err := resilience.Call(ctx, s.userDep, resilience.AssumeDefault[bool](true),
		func(ctx context.Context) (bool, error) {
			return s.Users.Exists(ctx, userID)
		})
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrValidation.WithMessage("user does not exist")
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(time.Now()),
		UserID:          userID,
		Status:          lifecycle.StatusPending,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	}
	order.RecomputeTotal()

	if err := s.Repo.Create(ctx, order); err != nil {
		return nil, err
	}

	l.Info("order created", "order_id", order.ID, "order_number", order.OrderNumber)
	s.afterCommit(ctx, "order.created", order)
	return s.toResponse(ctx, order), nil
}

func (s *OrderService) Get(ctx context.Context, id uint, p *principal.Principal) (*transport.OrderResponse, error) {
	order, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(order, p); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, order), nil
}

func (s *OrderService) GetByNumber(ctx context.Context, number string, p *principal.Principal) (*transport.OrderResponse, error) {
	order, err := s.Repo.FindByOrderNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(order, p); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, order), nil
}

func (s *OrderService) List(ctx context.Context, f repo.ListFilter) (*transport.OrderListResponse, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !lifecycle.IsKnown(f.Status) {
		return nil, apperr.ErrValidation.WithMessage("unknown order status: " + f.Status)
	}

	orders, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &transport.OrderListResponse{
		Orders: make([]transport.OrderResponse, 0, len(orders)),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	for i := range orders {
		// List responses skip enrichment to keep one remote call per row off
		// the hot path.
		out.Orders = append(out.Orders, *toPlainResponse(&orders[i]))
	}
	return out, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, to string) (*transport.OrderResponse, error) {
	order, err := s.Repo.UpdateStatus(ctx, id, to, func(current string) error {
		return lifecycle.ValidateTransition(current, to)
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order status updated",
		"order_id", order.ID, "status", to)
	s.afterCommit(ctx, "order.status_changed", order)
	return s.toResponse(ctx, order), nil
}

// Cancel is the owner-facing cancellation path. It is narrower than a manager
// moving an order to CANCELLED through UpdateStatus.
func (s *OrderService) Cancel(ctx context.Context, id uint, p *principal.Principal) (*transport.OrderResponse, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeWrite(existing, p); err != nil {
		return nil, err
	}

	order, err := s.Repo.UpdateStatus(ctx, id, lifecycle.StatusCancelled, lifecycle.ValidateCancel)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order cancelled", "order_id", order.ID)
	s.afterCommit(ctx, "order.cancelled", order)
	return s.toResponse(ctx, order), nil
}

func (s *OrderService) Update(ctx context.Context, id uint, req transport.UpdateOrderRequest, p *principal.Principal) (*transport.OrderResponse, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeWrite(existing, p); err != nil {
		return nil, err
	}

	var items []models.OrderItem
	if req.Items != nil {
		items, err = buildItems(req.Items)
		if err != nil {
			return nil, err
		}
	}

	order, err := s.Repo.ReplaceItems(ctx, id, items, req.ShippingAddress, lifecycle.ValidateUpdate)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, "order.updated", order)
	return s.toResponse(ctx, order), nil
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("order deleted", "order_id", id)
	if s.Search != nil {
		if err := s.Search.DeleteOrder(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search delete failed", "order_id", id, "error", err)
		}
	}
	return nil
}

func (s *OrderService) Statistics(ctx context.Context) (*transport.StatisticsResponse, error) {
	stats, err := s.Repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return &transport.StatisticsResponse{
		TotalOrders:   stats.TotalOrders,
		TotalRevenue:  stats.TotalRevenue,
		CountByStatus: stats.CountByStatus,
	}, nil
}

func (s *OrderService) SearchOrders(ctx context.Context, req transport.SearchRequest) ([]search.OrderDoc, error) {
	if s.Search == nil {
		return nil, apperr.ErrServiceUnavailable.WithMessage("search is not configured")
	}
	if req.Query == "" {
		return nil, apperr.ErrValidation.WithMessage("query is required")
	}
	if req.Status != "" && !lifecycle.IsKnown(req.Status) {
		return nil, apperr.ErrValidation.WithMessage("unknown order status: " + req.Status)
	}

	docs, err := s.Search.Search(ctx, req.Query, req.Status, req.Limit)
	if err != nil {
		return nil, apperr.ErrServiceUnavailable.WithCause(err)
	}
	return docs, nil
}

func authorizeRead(order *models.Order, p *principal.Principal) error {
	if p == nil {
		return apperr.ErrUnauthorized
	}
	if order.UserID == p.UserID || p.HasAnyRole(principal.RoleManager, principal.RoleAdmin) {
		return nil
	}
	return apperr.ErrForbidden
}

func authorizeWrite(order *models.Order, p *principal.Principal) error {
	if p == nil {
		return apperr.ErrUnauthorized
	}
	if order.UserID == p.UserID || p.IsAdmin() {
		return nil
	}
	return apperr.ErrForbidden
}

// afterCommit mirrors a committed order into the event stream and the search
// index. Failures are logged, never surfaced.
func (s *OrderService) afterCommit(ctx context.Context, eventType string, order *models.Order) {
	l := logging.FromContext(ctx)

	if s.Events != nil {
		event := OrderEvent{
			Type:        eventType,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			OccurredAt:  time.Now().UTC(),
		}
		if err := s.Events.Publish(ctx, order.OrderNumber, event); err != nil {
			l.Warn("event publish failed", "type", eventType, "order_id", order.ID, "error", err)
		}
	}

	if s.Search != nil {
		if err := s.Search.IndexOrder(ctx, order); err != nil {
			l.Warn("search index failed", "order_id", order.ID, "error", err)
		}
	}
}

func toPlainResponse(o *models.Order) *transport.OrderResponse {
	items := make([]transport.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, transport.OrderItemResponse{
			ID:          it.ID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return &transport.OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// toResponse attaches the user summary when it can be had cheaply; a user
// service outage degrades to a response without it.
func (s *OrderService) toResponse(ctx context.Context, o *models.Order) *transport.OrderResponse {
	res := toPlainResponse(o)
	res.User = s.userSummary(ctx, o.UserID)
	return res
}

func (s *OrderService) userSummary(ctx context.Context, userID uint) *transport.UserSummary {
	if summary, ok := s.Cache.Get(ctx, userID); ok {
		return summary
	}

	user, err := resilience.Call(ctx, s.userDep, resilience.DegradeOptional[*client.User](),
		func(ctx context.Context) (*client.User, error) {
			return s.Users.GetUser(ctx, userID)
		})
	if err != nil || user == nil {
		return nil
	}

	summary := &transport.UserSummary{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
	s.Cache.Set(ctx, summary)
	return summary
}
