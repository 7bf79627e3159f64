package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Transaction struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Client    primitive.ObjectID `bson:"client" json:"client"`
	Seller    primitive.ObjectID `bson:"seller" json:"seller"`
	Type      TransactionType    `bson:"type" json:"type" validate:"oneof=purchase refund"`
	Amount    float64            `bson:"amount" json:"amount" validate:"gt=0"`
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeRefund   TransactionType = "refund"
)

func (t *Transaction) ParticipantIDs() []primitive.ObjectID {
	return []primitive.ObjectID{t.Client, t.Seller}
}

// TransactionDetail is a transaction with both parties expanded.
type TransactionDetail struct {
	Transaction
	Client *UserSummary `json:"client"`
	Seller *UserSummary `json:"seller"`
}

type TransactionRequest struct {
	Client string   `json:"client"`
	Seller string   `json:"seller"`
	Type   string   `json:"type"`
	Amount *float64 `json:"amount"`
}
