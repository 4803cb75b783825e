package user

import (
	"encoding/json"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/apogee-blog/apogee/internal/config"
)

// ClerkUserProvider resolves the current user's profile through Clerk.
type ClerkUserProvider struct {
}

func NewClerkUserProvider() *ClerkUserProvider {
	return &ClerkUserProvider{}
}

// GetSessionKey returns the signed-in user's profile, or 401 when the
// request carries no valid session.
func (c *ClerkUserProvider) GetSessionKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := clerk.SessionClaimsFromContext(ctx)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	usr, err := clerkuser.Get(ctx, claims.Subject)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	profile := struct {
		ID       string `json:"id"`
		Username string `json:"username,omitempty"`
	}{
		ID: usr.ID,
	}
	if usr.Username != nil {
		profile.Username = *usr.Username
	}

	w.Header().Set(config.HCType, config.CTypeJSON)
	json.NewEncoder(w).Encode(profile)
}
