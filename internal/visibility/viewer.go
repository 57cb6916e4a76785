// Package visibility decides what a viewer may see of gated content and what
// an actor may change.
package visibility

import "nourish/internal/models"

// Viewer is the resolved identity state of a requester.
type Viewer struct {
	UserID uint
	Role   models.Role
	tiers  map[uint]struct{}
}

// Anonymous returns a viewer without identity.
func Anonymous() Viewer {
	return Viewer{}
}

// Identified returns a viewer for userID holding the given tier subscriptions.
// A nil or empty tier list means the viewer is subscribed to nothing, which is
// also what callers pass when subscription state could not be loaded.
func Identified(userID uint, role models.Role, tierIDs []uint) Viewer {
	v := Viewer{UserID: userID, Role: role, tiers: make(map[uint]struct{}, len(tierIDs))}
	for _, id := range tierIDs {
		v.tiers[id] = struct{}{}
	}
	return v
}

// IsAnonymous reports whether the viewer carries no identity.
func (v Viewer) IsAnonymous() bool {
	return v.UserID == 0
}

// Subscribed reports whether the viewer holds tierID.
func (v Viewer) Subscribed(tierID uint) bool {
	if v.IsAnonymous() {
		return false
	}
	_, ok := v.tiers[tierID]
	return ok
}

// TierIDs returns the subscribed tier ids in no particular order.
func (v Viewer) TierIDs() []uint {
	out := make([]uint, 0, len(v.tiers))
	for id := range v.tiers {
		out = append(out, id)
	}
	return out
}

// CanMutate is the single ownership check: only the owner may change a resource.
func CanMutate(actor Viewer, ownerID uint) bool {
	return !actor.IsAnonymous() && ownerID != 0 && actor.UserID == ownerID
}

// CanAuthor reports whether the actor may create posts, tiers and meals.
func CanAuthor(actor Viewer) bool {
	return !actor.IsAnonymous() && actor.Role.CanAuthor()
}
