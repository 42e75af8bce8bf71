package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
)

func createTestDestination(t *testing.T, db *DB, itineraryID, name string, order int) *model.Destination {
	t.Helper()
	d := &model.Destination{
		ItineraryID: itineraryID,
		Name:        name,
		StartDate:   tripStart,
		EndDate:     tripStart.AddDate(0, 0, 2),
		Images:      []string{},
		Location:    json.RawMessage(`{"lat":41.15,"lng":-8.61}`),
		OrderIndex:  order,
	}
	require.NoError(t, db.Destinations().Create(context.Background(), d))
	return d
}

func createTestExpense(t *testing.T, db *DB, itineraryID, destinationID string, date time.Time) *model.Expense {
	t.Helper()
	e := &model.Expense{
		ItineraryID:   itineraryID,
		DestinationID: destinationID,
		AmountCents:   1250,
		Currency:      "EUR",
		Category:      "food",
		Description:   "lunch",
		Date:          date,
	}
	require.NoError(t, db.Expenses().Create(context.Background(), e))
	return e
}

// =========================================================================
// DESTINATIONS
// =========================================================================

func TestDestination_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	trip := createTestItinerary(t, db, createTestUser(t, db, "alice@example.com"), "Portugal")

	d := createTestDestination(t, db, trip.ID, "Porto", 0)
	d.Images = []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"}
	d.Notes = "port cellars"
	require.NoError(t, db.Destinations().Update(ctx, d))

	got, err := db.Destinations().Get(ctx, trip.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Porto", got.Name)
	assert.Equal(t, "port cellars", got.Notes)
	assert.Equal(t, d.Images, got.Images)
	assert.JSONEq(t, `{"lat":41.15,"lng":-8.61}`, string(got.Location))
	assert.True(t, got.StartDate.Equal(tripStart))
}

func TestDestination_ListByOrderIndex(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	trip := createTestItinerary(t, db, createTestUser(t, db, "alice@example.com"), "Portugal")

	createTestDestination(t, db, trip.ID, "Faro", 2)
	createTestDestination(t, db, trip.ID, "Lisbon", 0)
	createTestDestination(t, db, trip.ID, "Porto", 1)

	list, err := db.Destinations().ListByItinerary(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Lisbon", "Porto", "Faro"},
		[]string{list[0].Name, list[1].Name, list[2].Name})
}

func TestDestination_ScopedByItinerary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice@example.com")
	lisbon := createTestItinerary(t, db, owner, "Lisbon")
	madrid := createTestItinerary(t, db, owner, "Madrid")

	d := createTestDestination(t, db, lisbon.ID, "Sintra", 0)

	_, err := db.Destinations().Get(ctx, madrid.ID, d.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	moved := *d
	moved.ItineraryID = madrid.ID
	assert.ErrorIs(t, db.Destinations().Update(ctx, &moved), apperror.ErrNotFound)
	assert.ErrorIs(t, db.Destinations().Delete(ctx, madrid.ID, d.ID), apperror.ErrNotFound)

	list, err := db.Destinations().ListByItinerary(ctx, madrid.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDestination_UnknownItinerary(t *testing.T) {
	db := newTestDB(t)

	err := db.Destinations().Create(context.Background(), &model.Destination{
		ItineraryID: "missing",
		Name:        "Nowhere",
		StartDate:   tripStart,
		EndDate:     tripEnd,
		Location:    json.RawMessage(`{}`),
	})
	assert.Error(t, err, "foreign_keys must reject a destination without an itinerary")
}

// =========================================================================
// EXPENSES
// =========================================================================

func TestExpense_ListByDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	trip := createTestItinerary(t, db, createTestUser(t, db, "alice@example.com"), "Portugal")

	late := createTestExpense(t, db, trip.ID, "", tripStart.AddDate(0, 0, 3))
	early := createTestExpense(t, db, trip.ID, "", tripStart)

	list, err := db.Expenses().ListByItinerary(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)
	assert.Equal(t, int64(1250), list[0].AmountCents)
	assert.Empty(t, list[0].DestinationID)
}

func TestExpense_DeletingDestinationClearsLink(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	trip := createTestItinerary(t, db, createTestUser(t, db, "alice@example.com"), "Portugal")
	porto := createTestDestination(t, db, trip.ID, "Porto", 0)
	e := createTestExpense(t, db, trip.ID, porto.ID, tripStart)

	got, err := db.Expenses().Get(ctx, trip.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, porto.ID, got.DestinationID)

	require.NoError(t, db.Destinations().Delete(ctx, trip.ID, porto.ID))

	got, err = db.Expenses().Get(ctx, trip.ID, e.ID)
	require.NoError(t, err, "the expense outlives its destination")
	assert.Empty(t, got.DestinationID)
}

// =========================================================================
// TRANSPORTS
// =========================================================================

func TestTransport_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	trip := createTestItinerary(t, db, createTestUser(t, db, "alice@example.com"), "Portugal")

	leg := &model.Transport{
		ItineraryID:      trip.ID,
		Type:             "train",
		Provider:         "CP",
		BookingReference: "AB12CD",
		Departure:        json.RawMessage(`{"station":"Lisboa"}`),
		Arrival:          json.RawMessage(`{"station":"Porto"}`),
		Seats:            []string{"4A", "4B"},
	}
	require.NoError(t, db.Transports().Create(ctx, leg))
	assert.NotEmpty(t, leg.ID)

	leg.Seats = []string{}
	leg.Notes = "changed seats"
	require.NoError(t, db.Transports().Update(ctx, leg))

	list, err := db.Transports().ListByItinerary(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "changed seats", list[0].Notes)
	assert.NotNil(t, list[0].Seats)
	assert.Empty(t, list[0].Seats)
	assert.JSONEq(t, `{"station":"Porto"}`, string(list[0].Arrival))

	require.NoError(t, db.Transports().Delete(ctx, trip.ID, leg.ID))
	_, err = db.Transports().Get(ctx, trip.ID, leg.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// COLLABORATORS
// =========================================================================

func TestCollaborator_AddListRemove(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	trip := createTestItinerary(t, db, owner, "Portugal")

	c := &model.Collaborator{ItineraryID: trip.ID, UserID: bob.ID, Role: model.RoleEditor}
	require.NoError(t, db.Collaborators().Add(ctx, c))

	err := db.Collaborators().Add(ctx, &model.Collaborator{ItineraryID: trip.ID, UserID: bob.ID, Role: model.RoleViewer})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	list, err := db.Collaborators().ListByItinerary(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob@example.com", list[0].Email, "email comes from the users table")
	assert.Equal(t, model.RoleEditor, list[0].Role)

	require.NoError(t, db.Collaborators().Remove(ctx, trip.ID, bob.ID))
	assert.ErrorIs(t, db.Collaborators().Remove(ctx, trip.ID, bob.ID), apperror.ErrNotFound)
}

// =========================================================================
// CASCADE
// =========================================================================

func TestItineraryDelete_CascadesToTripDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	trip := createTestItinerary(t, db, owner, "Portugal")

	porto := createTestDestination(t, db, trip.ID, "Porto", 0)
	createTestExpense(t, db, trip.ID, porto.ID, tripStart)
	require.NoError(t, db.Collaborators().Add(ctx,
		&model.Collaborator{ItineraryID: trip.ID, UserID: bob.ID, Role: model.RoleViewer}))

	require.NoError(t, db.Itineraries().Delete(ctx, owner.ID, trip.ID))

	for _, table := range []string{"destinations", "expenses", "transports", "collaborators"} {
		var n int
		require.NoError(t, db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}
