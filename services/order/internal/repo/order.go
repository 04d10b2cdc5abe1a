package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderhub/pkg/apperr"
	"orderhub/services/order/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Create(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound.WithMessage("order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) FindByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound.WithMessage("order not found")
		}
		return nil, err
	}
	return &order, nil
}

type ListFilter struct {
	UserID uint
	Status string
	Limit  int
	Offset int
}

func (r *GormRepo) List(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves an order to a new status. The validate callback sees the
// status read inside the transaction, and the UPDATE is conditional on that
// same status so a concurrent mutation makes one of the two writers lose.
func (r *GormRepo) UpdateStatus(ctx context.Context, id uint, to string, validate func(current string) error) (*models.Order, error) {
	var out *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound.WithMessage("order not found")
			}
			return err
		}

		if err := validate(order.Status); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, order.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrInvalidStatusTransition.
				WithMessage("order was modified concurrently")
		}

		order.Status = to
		out = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceItems swaps an order's item set and total in one transaction. The
// validate callback gates on the status read inside the transaction, and the
// final write is conditional on that same status so the transaction rolls
// back if a concurrent status change committed in between.
func (r *GormRepo) ReplaceItems(ctx context.Context, id uint, items []models.OrderItem, address *string, validate func(current string) error) (*models.Order, error) {
	var out *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound.WithMessage("order not found")
			}
			return err
		}

		readStatus := order.Status
		if err := validate(readStatus); err != nil {
			return err
		}

		if len(items) > 0 {
			if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].OrderID = id
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			order.Items = items
		} else {
			if err := tx.Where("order_id = ?", id).Find(&order.Items).Error; err != nil {
				return err
			}
		}
		if address != nil {
			order.ShippingAddress = *address
		}
		order.RecomputeTotal()

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, readStatus).
			Updates(map[string]any{
				"total_amount":     order.TotalAmount,
				"shipping_address": order.ShippingAddress,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrOrderNotUpdatable.
				WithMessage("order was modified concurrently")
		}

		out = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound.WithMessage("order not found")
		}
		return tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error
	})
}

type Statistics struct {
	TotalOrders   int64
	TotalRevenue  float64
	CountByStatus map[string]int64
}

func (r *GormRepo) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{CountByStatus: make(map[string]int64)}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue struct{ Sum float64 }
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS sum").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue.Sum

	var rows []struct {
		Status string
		Count  int64
	}
	err = r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.CountByStatus[row.Status] = row.Count
	}
	return stats, nil
}
