package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPhotoSize is the largest accepted product photo, in bytes.
const MaxPhotoSize = 1000000

// Product is a sellable item owned by the admin who created it.
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    primitive.ObjectID `json:"category" bson:"category"`
	// Quantity is the stock on hand.
	Quantity  int                `json:"quantity" bson:"quantity"`
	Photo     string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Shipping  bool               `json:"shipping" bson:"shipping"`
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"created_by"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ProductDetail is a product with its category resolved.
type ProductDetail struct {
	Product  `bson:",inline"`
	Category *Category `json:"category" bson:"-"`
}

// ProductFields are the admin-editable fields of a product.
type ProductFields struct {
	Name        string
	Description string
	Price       *float64
	Category    string
	Quantity    *int
	Shipping    *bool
}

// ProductFilter holds independently optional predicates that are AND-combined.
type ProductFilter struct {
	Keyword     string
	CategoryIDs []primitive.ObjectID
	PriceRange  *PriceRange
	CreatedBy   *primitive.ObjectID
}

// PriceRange is inclusive on both ends.
type PriceRange struct {
	Min float64
	Max float64
}

// StockDecrement is one staged `quantity -= Quantity` update.
type StockDecrement struct {
	Product  primitive.ObjectID
	Quantity int
}
