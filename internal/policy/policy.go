// Package policy decides whether an actor may perform an operation on a
// resource. Decisions are pure functions of the actor and the resource; the
// callers turn a false into a forbidden error.
package policy

import (
	"marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HasOwner is implemented by resources with a single owning user
// (Product.Seller, Order.Client).
type HasOwner interface {
	OwnerID() primitive.ObjectID
}

// HasParticipants is implemented by resources shared between several users
// (Transaction client and seller).
type HasParticipants interface {
	ParticipantIDs() []primitive.ObjectID
}

// CanModify reports whether actor may update or delete r: admins always,
// otherwise only the owner.
func CanModify(actor *models.Actor, r HasOwner) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == r.OwnerID()
}

// CanAccess reports whether actor may read r: admins always, otherwise any
// named participant.
func CanAccess(actor *models.Actor, r HasParticipants) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	for _, id := range r.ParticipantIDs() {
		if id == actor.ID {
			return true
		}
	}
	return false
}

func CanDeleteTransaction(actor *models.Actor) bool {
	return actor.IsAdmin()
}

func CanCreateProduct(actor *models.Actor) bool {
	return hasRole(actor, models.RoleSeller)
}

func CanCreateOrder(actor *models.Actor) bool {
	return hasRole(actor, models.RoleClient)
}

func CanCreateTransaction(actor *models.Actor) bool {
	return hasRole(actor, models.RoleClient, models.RoleSeller)
}

// SeesAll reports whether listings for actor skip the ownership filter.
func SeesAll(actor *models.Actor) bool {
	return actor.IsAdmin()
}

func hasRole(actor *models.Actor, roles ...models.Role) bool {
	if actor == nil {
		return false
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}
