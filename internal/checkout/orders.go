package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Skotchmaster/rad_plants/internal/kv"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/models"
)

const OrdersKey = "rad_plants_orders"

// OrderLog is the persisted list of confirmed orders held in one KV slot.
// Appends read the whole list and write it back; the last writer wins.
type OrderLog struct {
	Store kv.Store
	Key   string
}

func NewOrderLog(store kv.Store) *OrderLog {
	return &OrderLog{Store: store, Key: OrdersKey}
}

// List returns the stored orders. A missing or unreadable slot is treated
// as an empty list.
func (l *OrderLog) List(ctx context.Context) ([]models.Order, error) {
	raw, found, err := l.Store.Get(ctx, l.Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Key, err)
	}
	if !found {
		return []models.Order{}, nil
	}

	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		logging.FromContext(ctx).Warn("order_log_corrupt", "key", l.Key, "error", err)
		return []models.Order{}, nil
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (l *OrderLog) Append(ctx context.Context, order models.Order) error {
	orders, err := l.List(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, order)

	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err := l.Store.Put(ctx, l.Key, raw); err != nil {
		return fmt.Errorf("write %s: %w", l.Key, err)
	}
	return nil
}
