package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Principal is the authenticated actor behind a request. It is derived from a
// verified token on every request, with the role taken from the stored user
// record rather than the token claims, and is never persisted.
type Principal struct {
	ID   primitive.ObjectID
	Role UserRole
}

// HasRole reports whether the principal's role is one of roles.
func (p Principal) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanManage reports whether the principal may mutate a resource owned by
// ownerID: admins always can, everyone else only owns their own resources.
func (p Principal) CanManage(ownerID primitive.ObjectID) bool {
	return p.Role == RoleAdmin || p.ID == ownerID
}
