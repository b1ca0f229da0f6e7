package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPrepared  OrderStatus = "prepared"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPrepared,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// DeliveryFeeThreshold is the subtotal at or above which delivery is free.
// Orders below it pay DefaultDeliveryFee unless the caller supplies a fee.
const (
	DeliveryFeeThreshold = 100.0
	DefaultDeliveryFee   = 5.0
)

type OrderItem struct {
	ProductID string  `json:"productId" dynamodbav:"productId"`
	Name      string  `json:"name" dynamodbav:"name"`
	Unit      string  `json:"unit" dynamodbav:"unit"`
	Quantity  int     `json:"quantity" dynamodbav:"quantity"`
	Price     float64 `json:"price" dynamodbav:"price"`
	LineTotal float64 `json:"lineTotal" dynamodbav:"lineTotal"`
}

type Payment struct {
	Amount    float64   `json:"amount" dynamodbav:"amount"`
	Date      string    `json:"date" dynamodbav:"date"`
	Method    string    `json:"method" dynamodbav:"method"`
	CreatedBy string    `json:"createdBy" dynamodbav:"createdBy"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

type CreditNote struct {
	Amount    float64   `json:"amount" dynamodbav:"amount"`
	Reason    string    `json:"reason" dynamodbav:"reason"`
	Date      string    `json:"date" dynamodbav:"date"`
	CreatedBy string    `json:"createdBy" dynamodbav:"createdBy"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

type Order struct {
	ID              string        `json:"id" dynamodbav:"id"`
	CustomerID      string        `json:"customerId" dynamodbav:"customerId"`
	SellerID        string        `json:"sellerId" dynamodbav:"sellerId"`
	Items           []OrderItem   `json:"items" dynamodbav:"items"`
	Subtotal        float64       `json:"subtotal" dynamodbav:"subtotal"`
	DeliveryFee     float64       `json:"deliveryFee" dynamodbav:"deliveryFee"`
	Total           float64       `json:"total" dynamodbav:"total"`
	TotalPaid       float64       `json:"totalPaid" dynamodbav:"totalPaid"`
	RemainingAmount float64       `json:"remainingAmount" dynamodbav:"remainingAmount"`
	Payments        []Payment     `json:"payments" dynamodbav:"payments"`
	CreditNotes     []CreditNote  `json:"creditNotes" dynamodbav:"creditNotes"`
	Status          OrderStatus   `json:"status" dynamodbav:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" dynamodbav:"paymentStatus"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty" dynamodbav:"deliveryAddress"`
	DeliveryDate    string        `json:"deliveryDate,omitempty" dynamodbav:"deliveryDate"`
	PaymentMethod   string        `json:"paymentMethod" dynamodbav:"paymentMethod"`
	Notes           string        `json:"notes,omitempty" dynamodbav:"notes"`
	CreatedAt       time.Time     `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" dynamodbav:"updatedAt"`
}

// CreditTotal sums all credit notes applied to the order.
func (o *Order) CreditTotal() float64 {
	var total float64
	for _, cn := range o.CreditNotes {
		total += cn.Amount
	}
	return total
}

// Recalculate derives every computed monetary field from the order's
// authoritative inputs: items, subtotal, deliveryFee, payments and credit
// notes. It is the single derivation point for the order balance; every
// mutating path must call it before persisting so the derived fields cannot
// drift from the records they are derived from.
func (o *Order) Recalculate(now time.Time) {
	for i := range o.Items {
		o.Items[i].LineTotal = o.Items[i].Price * float64(o.Items[i].Quantity)
	}

	o.Total = o.Subtotal + o.DeliveryFee

	var paid float64
	for _, p := range o.Payments {
		paid += p.Amount
	}
	o.TotalPaid = paid

	credit := o.CreditTotal()
	o.RemainingAmount = o.Total - o.TotalPaid - credit

	switch {
	case o.RemainingAmount <= 0:
		o.PaymentStatus = PaymentStatusPaid
	case o.pastDue(now):
		o.PaymentStatus = PaymentStatusOverdue
	case o.TotalPaid > 0 || credit > 0:
		o.PaymentStatus = PaymentStatusPartial
	default:
		o.PaymentStatus = PaymentStatusPending
	}
}

func (o *Order) pastDue(now time.Time) bool {
	if o.DeliveryDate == "" {
		return false
	}
	due, err := time.Parse("2006-01-02", o.DeliveryDate)
	if err != nil {
		due, err = time.Parse(time.RFC3339, o.DeliveryDate)
		if err != nil {
			return false
		}
	}
	// Grace of one day so an order is not overdue on its delivery day.
	return now.After(due.AddDate(0, 0, 1))
}

type CreateOrderRequest struct {
	CustomerID      string      `json:"customerId" binding:"required"`
	SellerID        string      `json:"sellerId" binding:"required"`
	Items           []OrderItem `json:"items" binding:"required,min=1"`
	Subtotal        *float64    `json:"subtotal" binding:"required"`
	DeliveryFee     *float64    `json:"deliveryFee"`
	DeliveryAddress string      `json:"deliveryAddress"`
	DeliveryDate    string      `json:"deliveryDate"`
	PaymentMethod   string      `json:"paymentMethod"`
	Notes           string      `json:"notes"`
}

// UpdateOrderRequest carries a partial order update. Nil pointers mean
// "leave unchanged". Payment and CreditNote submissions are append-only;
// the stored records are never rewritten through this request.
type UpdateOrderRequest struct {
	Status          *OrderStatus   `json:"status"`
	PaymentStatus   *PaymentStatus `json:"paymentStatus"`
	Items           []OrderItem    `json:"items"`
	Subtotal        *float64       `json:"subtotal"`
	DeliveryFee     *float64       `json:"deliveryFee"`
	DeliveryAddress *string        `json:"deliveryAddress"`
	DeliveryDate    *string        `json:"deliveryDate"`
	Notes           *string        `json:"notes"`
	Payment         *PaymentInput  `json:"payment"`
	CreditNote      *CreditInput   `json:"creditNote"`
}

type PaymentInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Date   string  `json:"date"`
	Method string  `json:"method"`
}

type CreditInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason"`
	Date   string  `json:"date"`
}
