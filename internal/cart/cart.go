package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Skotchmaster/rad_plants/internal/models"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

type Op string

const (
	OpAdd     Op = "add_cart_item"
	OpUpdate  Op = "update_cart_item"
	OpRemove  Op = "remove_cart_item"
	OpClear   Op = "clear_cart"
	OpSetOpen Op = "set_cart_open"
)

type Snapshot struct {
	Op         Op                `json:"op"`
	Items      []models.LineItem `json:"items"`
	Open       bool              `json:"open"`
	TotalItems int               `json:"totalItems"`
	TotalPrice float64           `json:"totalPrice"`
}

// Cart holds line items in insertion order, at most one per product id.
type Cart struct {
	mu        sync.Mutex
	items     []models.LineItem
	open      bool
	observers map[int]func(Snapshot)
	nextObs   int
}

func New() *Cart {
	return &Cart{observers: map[int]func(Snapshot){}}
}

// Subscribe registers fn to be called after every mutation. Observers run
// outside the cart lock.
func (c *Cart) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

func (c *Cart) AddItem(item models.LineItem, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("add %s x%d: %w", item.ID, quantity, ErrInvalidQuantity)
	}

	c.mu.Lock()
	if i := c.indexOf(item.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		c.items = append(c.items, item)
	}
	c.commit(OpAdd)
	return nil
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line;
// unknown ids are ignored.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	if quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	} else {
		c.items[i].Quantity = quantity
	}
	c.commit(OpUpdate)
}

func (c *Cart) RemoveItem(id string) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.commit(OpRemove)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.commit(OpClear)
}

func (c *Cart) SetOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.commit(OpSetOpen)
}

func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Cart) Items() []models.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyItems()
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalItems(c.items)
}

func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TotalPrice(c.items)
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot("")
}

func TotalPrice(items []models.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func totalItems(items []models.LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) copyItems() []models.LineItem {
	out := make([]models.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) snapshot(op Op) Snapshot {
	return Snapshot{
		Op:         op,
		Items:      c.copyItems(),
		Open:       c.open,
		TotalItems: totalItems(c.items),
		TotalPrice: TotalPrice(c.items),
	}
}

// commit must be called with c.mu held; it releases the lock before
// notifying observers.
func (c *Cart) commit(op Op) {
	snap := c.snapshot(op)
	obs := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}
