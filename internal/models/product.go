package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Price       float64            `bson:"price" json:"price" validate:"gte=0"`
	Stock       int                `bson:"stock" json:"stock" validate:"gte=0"`
	Rating      float64            `bson:"rating" json:"rating" validate:"gte=0,lte=5"`
	Photo       string             `bson:"photo" json:"photo" validate:"omitempty,uri"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Product) OwnerID() primitive.ObjectID { return p.Seller }

// ProductSummary is the expanded form of a product reference inside an order.
type ProductSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Price float64            `json:"price"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price}
}

// ProductDetail is a product with its seller expanded. The outer Seller field
// shadows Product.Seller in JSON output.
type ProductDetail struct {
	Product
	Seller *UserSummary `json:"seller"`
}

// ProductInput carries caller supplied fields for create and update. Nil
// pointers mean "not supplied".
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Rating      *float64 `json:"rating"`
	Photo       *string  `json:"photo"`
}

// Apply copies every supplied field onto p.
func (in *ProductInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Photo != nil {
		p.Photo = *in.Photo
	}
}
