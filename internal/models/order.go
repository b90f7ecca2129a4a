package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderNotProcessed OrderStatus = "Not Processed"
	OrderProcessing   OrderStatus = "Processing"
	OrderShipped      OrderStatus = "Shipped"
	OrderDelivered    OrderStatus = "Delivered"
	OrderCancelled    OrderStatus = "Cancelled"
	OrderRefunded     OrderStatus = "Refunded"
)

// OrderStatuses lists every status in workflow order.
var OrderStatuses = []OrderStatus{
	OrderNotProcessed,
	OrderProcessing,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
	OrderRefunded,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

const (
	PaymentMethodCOD = "cod"
	// NoTransactionID stands in until a payment gateway exists.
	NoTransactionID = "N/A"
)

type Payment struct {
	Method        string        `json:"method" bson:"method"`
	Status        PaymentStatus `json:"status" bson:"status"`
	TransactionID string        `json:"transactionId" bson:"transaction_id"`
}

type OrderItem struct {
	Product         primitive.ObjectID `json:"product" bson:"product"`
	Quantity        int                `json:"quantity" bson:"quantity"`
	PriceAtAddition float64            `json:"priceAtAddition" bson:"price_at_addition"`
	Name            string             `json:"name" bson:"name"`
	Photo           string             `json:"photo,omitempty" bson:"photo,omitempty"`
}

const ReconciliationPending = "pending"

// Reconciliation marks an order whose follow-up writes (stock, cart) did
// not complete.
type Reconciliation struct {
	Status   string    `json:"status" bson:"status"`
	Reason   string    `json:"reason" bson:"reason"`
	MarkedAt time.Time `json:"markedAt" bson:"marked_at"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	OrderRef        string             `json:"orderRef" bson:"order_ref"`
	Products        []OrderItem        `json:"products" bson:"products"`
	Payment         Payment            `json:"payment" bson:"payment"`
	Buyer           primitive.ObjectID `json:"buyer" bson:"buyer"`
	TotalAmount     float64            `json:"totalAmount" bson:"total_amount"`
	ShippingAddress string             `json:"shippingAddress" bson:"shipping_address"`
	OrderStatus     OrderStatus        `json:"orderStatus" bson:"order_status"`
	Reconciliation  *Reconciliation    `json:"reconciliation,omitempty" bson:"reconciliation,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}

// BuyerSummary is the buyer projection shown to admins.
type BuyerSummary struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
}

type AdminOrderView struct {
	Order `bson:",inline"`
	Buyer *BuyerSummary `json:"buyer" bson:"-"`
}
