package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryIndoor  Category = "indoor"
	CategoryOutdoor Category = "outdoor"
	CategoryBedroom Category = "bedroom"

	// CategoryAll is the catalogue filter sentinel, never a product category.
	CategoryAll Category = "all"
)

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	InStock     bool     `json:"inStock"`
	Stock       int      `json:"stock"`
}

// LineItem is one cart row. Price is captured when the product is added.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

func (p Product) Snapshot() LineItem {
	return LineItem{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}
}

type ShippingDetails struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// RequiredFilled reports whether name, email and phone are non-blank.
func (s ShippingDetails) RequiredFilled() bool {
	return strings.TrimSpace(s.FullName) != "" &&
		strings.TrimSpace(s.Email) != "" &&
		strings.TrimSpace(s.Phone) != ""
}

type PaymentMethod string

const (
	PaymentCOD       PaymentMethod = "cod"
	PaymentJazzCash  PaymentMethod = "jazzcash"
	PaymentEasyPaisa PaymentMethod = "easypaisa"
	PaymentBank      PaymentMethod = "bank"
)

var PaymentMethods = []PaymentMethod{PaymentCOD, PaymentJazzCash, PaymentEasyPaisa, PaymentBank}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Label() string {
	return strings.ToUpper(string(m))
}

const OrderStatusConfirmed = "Confirmed"

type Order struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Items         []LineItem      `json:"items"`
	Total         float64         `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Shipping      ShippingDetails `json:"shipping"`
	Status        string          `json:"status"`
}

type KVEntry struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null"                  json:"value"`
	UpdatedAt time.Time `gorm:"not null"                            json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
