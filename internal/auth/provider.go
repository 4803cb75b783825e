package auth

import (
	"net/http"

	"github.com/apogee-blog/apogee/internal/model"
)

type AuthProvider interface {
	WithHeaderAuthorization() func(http.Handler) http.Handler

	GetUserIdFromSession(r *http.Request) (model.UserID, error)

	EnforceUserAndGetId(w http.ResponseWriter, r *http.Request) (model.UserID, error)

	HandleWebhookUser(w http.ResponseWriter, r *http.Request)
}
