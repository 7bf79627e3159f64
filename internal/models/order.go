package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Order struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Client      primitive.ObjectID `bson:"client" json:"client"`
	Products    []OrderLine        `bson:"products" json:"products" validate:"required,min=1,dive"`
	Date        time.Time          `bson:"date" json:"date"`
	Status      OrderStatus        `bson:"status" json:"status" validate:"oneof=pending completed cancelled"`
	TotalPoints float64            `bson:"total_points" json:"total_points" validate:"gte=0"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type OrderLine struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity" validate:"gte=1"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (o *Order) OwnerID() primitive.ObjectID { return o.Client }

type OrderLineDetail struct {
	Product  *ProductSummary `json:"product"`
	Quantity int             `json:"quantity"`
}

// OrderDetail is an order with its client and line products expanded.
type OrderDetail struct {
	Order
	Client   *UserSummary      `json:"client"`
	Products []OrderLineDetail `json:"products"`
}

type OrderLineInput struct {
	Product  string `json:"product"`
	Quantity *int   `json:"quantity"`
}

// OrderInput carries caller supplied fields for create and update.
type OrderInput struct {
	Products    []OrderLineInput `json:"products"`
	Status      *string          `json:"status"`
	TotalPoints *float64         `json:"total_points"`
}
