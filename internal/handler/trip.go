package handler

import (
	"net/http"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/model"
)

// The trip-detail handlers (destinations, expenses, transports and
// collaborators) are mounted under /itineraries/{id}. The parent ID always
// comes from the URL; the request bodies have no itinerary_id field, so
// decodeJSON rejects one as an unknown field.

// actingUser returns the user RequireAuth stored in the context, or writes a
// 401 and returns false.
func actingUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
	}
	return user, ok
}
