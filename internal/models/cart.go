package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartStatus string

// Only CartActive is ever written; the other values are reserved for
// lifecycle automation.
const (
	CartActive    CartStatus = "active"
	CartConverted CartStatus = "converted"
	CartAbandoned CartStatus = "abandoned"
)

// CartTTL is the advisory lifetime of a cart. Nothing sweeps expired carts.
const CartTTL = 7 * 24 * time.Hour

type CartItem struct {
	Product         primitive.ObjectID `json:"product" bson:"product"`
	Quantity        int                `json:"quantity" bson:"quantity"`
	PriceAtAddition float64            `json:"priceAtAddition" bson:"price_at_addition"`
}

type Cart struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Items     []CartItem         `json:"items" bson:"items"`
	Status    CartStatus         `json:"status" bson:"status"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expires_at"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID primitive.ObjectID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.Product == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// ResolvedCartItem is a cart line with the live product attached. Product is
// nil when the product has been deleted since it was added.
type ResolvedCartItem struct {
	Product         *Product `json:"product"`
	ProductID       string   `json:"productId"`
	Quantity        int      `json:"quantity"`
	PriceAtAddition float64  `json:"priceAtAddition"`
}

type CartView struct {
	ID         *primitive.ObjectID `json:"_id,omitempty"`
	Items      []ResolvedCartItem  `json:"items"`
	Status     CartStatus          `json:"status,omitempty"`
	ExpiresAt  *time.Time          `json:"expiresAt,omitempty"`
	TotalPrice float64             `json:"totalPrice"`
}

// TotalPrice sums quantity times the snapshot price of every line.
func TotalPrice(items []CartItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.PriceAtAddition).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}
