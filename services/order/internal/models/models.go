package models

import "time"

type Order struct {
	ID              uint        `gorm:"primarykey" json:"id"`
	OrderNumber     string      `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID          uint        `gorm:"index;not null" json:"userId"`
	Status          string      `gorm:"not null" json:"status"`
	TotalAmount     float64     `gorm:"not null" json:"totalAmount"`
	ShippingAddress string      `json:"shippingAddress"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"-"`
	ProductName string  `gorm:"not null" json:"productName"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
	TotalPrice  float64 `gorm:"not null" json:"totalPrice"`
}

// RecomputeTotal derives the order total from its items. Callers mutate items
// and then call this before persisting.
func (o *Order) RecomputeTotal() {
	var sum float64
	for i := range o.Items {
		sum += o.Items[i].TotalPrice
	}
	o.TotalAmount = sum
}
