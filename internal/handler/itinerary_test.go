package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/model"
)

// itineraryRouter mounts the itinerary and trip-detail routes the way
// server.go does, with a stand-in for RequireAuth that puts `user` in the
// context.
func (e *testEnv) itineraryRouter(user *model.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), user)))
		})
	})
	r.Route("/itineraries", func(r chi.Router) {
		r.Get("/", e.itineraries.HandleList)
		r.Post("/", e.itineraries.HandleCreate)
		r.Get("/{id}", e.itineraries.HandleGet)
		r.Put("/{id}", e.itineraries.HandleUpdate)
		r.Delete("/{id}", e.itineraries.HandleDelete)

		r.Route("/{id}/destinations", func(r chi.Router) {
			r.Get("/", e.destinations.HandleList)
			r.Post("/", e.destinations.HandleCreate)
			r.Get("/{destinationID}", e.destinations.HandleGet)
			r.Put("/{destinationID}", e.destinations.HandleUpdate)
			r.Delete("/{destinationID}", e.destinations.HandleDelete)
		})
		r.Route("/{id}/expenses", func(r chi.Router) {
			r.Get("/", e.expenses.HandleList)
			r.Post("/", e.expenses.HandleCreate)
			r.Get("/{expenseID}", e.expenses.HandleGet)
			r.Put("/{expenseID}", e.expenses.HandleUpdate)
			r.Delete("/{expenseID}", e.expenses.HandleDelete)
		})
		r.Route("/{id}/transports", func(r chi.Router) {
			r.Get("/", e.transports.HandleList)
			r.Post("/", e.transports.HandleCreate)
			r.Get("/{transportID}", e.transports.HandleGet)
			r.Put("/{transportID}", e.transports.HandleUpdate)
			r.Delete("/{transportID}", e.transports.HandleDelete)
		})
		r.Route("/{id}/collaborators", func(r chi.Router) {
			r.Get("/", e.collaborators.HandleList)
			r.Post("/", e.collaborators.HandleAdd)
			r.Delete("/{userID}", e.collaborators.HandleRemove)
		})
	})
	return r
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "hash"}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const lisbonTrip = `{"title":"Lisbon","description":"tram 28","start_date":"2026-07-01","end_date":"2026-07-08"}`

func TestItineraryHandler_CRUD(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	h := env.itineraryRouter(alice)

	// Create
	rr := do(t, h, http.MethodPost, "/itineraries", lisbonTrip)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created model.Itinerary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, alice.ID, created.UserID)
	assert.Equal(t, "Lisbon", created.Title)
	assert.Equal(t, "2026-07-01", created.StartDate.Format("2006-01-02"))

	// Get
	rr = do(t, h, http.MethodGet, "/itineraries/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	// List
	rr = do(t, h, http.MethodGet, "/itineraries?limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []model.Itinerary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// Update
	rr = do(t, h, http.MethodPut, "/itineraries/"+created.ID,
		`{"title":"Porto","start_date":"2026-07-02","end_date":"2026-07-04"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated model.Itinerary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Porto", updated.Title)
	assert.Empty(t, updated.Description)

	// Delete
	rr = do(t, h, http.MethodDelete, "/itineraries/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/itineraries/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestItineraryHandler_EmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)
	h := env.itineraryRouter(env.createUser(t, "alice@example.com"))

	rr := do(t, h, http.MethodGet, "/itineraries", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestItineraryHandler_OtherUsersItineraryIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	rr := do(t, env.itineraryRouter(alice), http.MethodPost, "/itineraries", lisbonTrip)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created model.Itinerary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	asBob := env.itineraryRouter(bob)
	path := "/itineraries/" + created.ID

	assert.Equal(t, http.StatusNotFound, do(t, asBob, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, asBob, http.MethodPut, path, lisbonTrip).Code)
	assert.Equal(t, http.StatusNotFound, do(t, asBob, http.MethodDelete, path, "").Code)

	rr = do(t, asBob, http.MethodGet, "/itineraries", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestItineraryHandler_Validation(t *testing.T) {
	env := newTestEnv(t)
	h := env.itineraryRouter(env.createUser(t, "alice@example.com"))

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing title", `{"start_date":"2026-07-01","end_date":"2026-07-08"}`, "title"},
		{"bad start date", `{"title":"x","start_date":"July 1st","end_date":"2026-07-08"}`, "start_date"},
		{"missing end date", `{"title":"x","start_date":"2026-07-01"}`, "end_date"},
		{"end before start", `{"title":"x","start_date":"2026-07-08","end_date":"2026-07-01"}`, "end_date"},
		{"client-chosen owner", `{"title":"x","user_id":"someone-else","start_date":"2026-07-01","end_date":"2026-07-08"}`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/itineraries", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, "validation_error", body["error"])
			assert.Equal(t, tt.wantField, body["field"])
		})
	}
}

func TestItineraryHandler_AcceptsRFC3339(t *testing.T) {
	env := newTestEnv(t)
	h := env.itineraryRouter(env.createUser(t, "alice@example.com"))

	rr := do(t, h, http.MethodPost, "/itineraries",
		`{"title":"Red-eye","start_date":"2026-07-01T23:30:00+02:00","end_date":"2026-07-02T06:00:00Z"}`)

	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}
