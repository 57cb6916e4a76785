package service

import "nourish/internal/models"

// publicProfile returns a copy of u safe to embed in content owned by u.
func publicProfile(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Email = ""
	out.ProfessionProof = ""
	out.Following = nil
	out.Subscribed = nil
	return &out
}
