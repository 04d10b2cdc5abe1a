package transport

import "time"

type OrderItemRequest struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
}

type UpdateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress *string            `json:"shippingAddress"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type OrderItemResponse struct {
	ID          uint    `json:"id"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// UserSummary is the enrichment block attached to order responses. It is nil
// when the user service is unavailable.
type UserSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type OrderResponse struct {
	ID              uint                `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          uint                `json:"userId"`
	Status          string              `json:"status"`
	TotalAmount     float64             `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	User            *UserSummary        `json:"user,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type StatisticsResponse struct {
	TotalOrders   int64            `json:"totalOrders"`
	TotalRevenue  float64          `json:"totalRevenue"`
	CountByStatus map[string]int64 `json:"countByStatus"`
}

type SearchRequest struct {
	Query  string `json:"query"`
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}
