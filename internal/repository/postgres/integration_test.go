//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
	repo "github.com/sakif/hodeway/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "hodeway_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/hodeway_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	store, err := repo.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping(ctx))

	u := &model.User{Email: "user@example.com", FullName: "User", PasswordHash: "hash"}
	require.NoError(t, store.Users().CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)

	byEmail, err := store.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byID, err := store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	err = store.Users().CreateUser(ctx, &model.User{Email: u.Email, PasswordHash: "other"})
	require.ErrorIs(t, err, apperror.ErrConflict)

	_, err = store.Users().GetUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStore_ConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	store, err := repo.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const attempts = 16
	var created atomic.Int32

	var g errgroup.Group
	for range attempts {
		g.Go(func() error {
			err := store.Users().CreateUser(ctx, &model.User{Email: "race@example.com", PasswordHash: "hash"})
			if err == nil {
				created.Add(1)
				return nil
			}
			if errors.Is(err, apperror.ErrConflict) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), created.Load())
}

func TestStore_Itineraries(t *testing.T) {
	ctx := context.Background()
	store, err := repo.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash"}
	require.NoError(t, store.Users().CreateUser(ctx, owner))
	other := &model.User{Email: "other@example.com", PasswordHash: "hash"}
	require.NoError(t, store.Users().CreateUser(ctx, other))

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	it := &model.Itinerary{UserID: owner.ID, Title: "Lisbon", StartDate: start, EndDate: start.AddDate(0, 0, 7)}
	require.NoError(t, store.Itineraries().Create(ctx, it))

	got, err := store.Itineraries().GetByID(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, owner.ID, got.UserID)
	require.True(t, got.StartDate.Equal(start))

	list, err := store.Itineraries().ListByUser(ctx, owner.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)

	it.Title = "Porto"
	require.NoError(t, store.Itineraries().Update(ctx, it))

	hijack := *it
	hijack.UserID = other.ID
	require.ErrorIs(t, store.Itineraries().Update(ctx, &hijack), apperror.ErrNotFound)
	require.ErrorIs(t, store.Itineraries().Delete(ctx, other.ID, it.ID), apperror.ErrNotFound)

	require.NoError(t, store.Itineraries().Delete(ctx, owner.ID, it.ID))
	_, err = store.Itineraries().GetByID(ctx, it.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStore_TripDetails(t *testing.T) {
	ctx := context.Background()
	store, err := repo.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	owner := &model.User{Email: "planner@example.com", PasswordHash: "hash"}
	require.NoError(t, store.Users().CreateUser(ctx, owner))
	friend := &model.User{Email: "friend@example.com", PasswordHash: "hash"}
	require.NoError(t, store.Users().CreateUser(ctx, friend))

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	it := &model.Itinerary{UserID: owner.ID, Title: "Portugal", StartDate: start, EndDate: start.AddDate(0, 0, 7)}
	require.NoError(t, store.Itineraries().Create(ctx, it))

	porto := &model.Destination{
		ItineraryID: it.ID, Name: "Porto", StartDate: start, EndDate: start.AddDate(0, 0, 2),
		Images: []string{"https://img.example.com/porto.jpg"}, Location: []byte(`{"lat":41.15}`),
	}
	require.NoError(t, store.Destinations().Create(ctx, porto))
	gotStop, err := store.Destinations().Get(ctx, it.ID, porto.ID)
	require.NoError(t, err)
	require.Equal(t, porto.Images, gotStop.Images)
	require.JSONEq(t, `{"lat":41.15}`, string(gotStop.Location))

	lunch := &model.Expense{
		ItineraryID: it.ID, DestinationID: porto.ID, AmountCents: 9_999_999_999,
		Currency: "EUR", Category: "food", Description: "a very long lunch", Date: start,
	}
	require.NoError(t, store.Expenses().Create(ctx, lunch))

	leg := &model.Transport{
		ItineraryID: it.ID, Type: "train", Provider: "CP", BookingReference: "AB12CD",
		Departure: []byte(`{"station":"Lisboa"}`), Arrival: []byte(`{"station":"Porto"}`), Seats: []string{},
	}
	require.NoError(t, store.Transports().Create(ctx, leg))
	legs, err := store.Transports().ListByItinerary(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	require.NotNil(t, legs[0].Seats)

	require.NoError(t, store.Collaborators().Add(ctx, &model.Collaborator{ItineraryID: it.ID, UserID: friend.ID, Role: model.RoleViewer}))
	err = store.Collaborators().Add(ctx, &model.Collaborator{ItineraryID: it.ID, UserID: friend.ID, Role: model.RoleEditor})
	require.ErrorIs(t, err, apperror.ErrConflict)
	people, err := store.Collaborators().ListByItinerary(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	require.Equal(t, friend.Email, people[0].Email)

	// ON DELETE SET NULL keeps the expense.
	require.NoError(t, store.Destinations().Delete(ctx, it.ID, porto.ID))
	gotLunch, err := store.Expenses().Get(ctx, it.ID, lunch.ID)
	require.NoError(t, err)
	require.Empty(t, gotLunch.DestinationID)
	require.Equal(t, int64(9_999_999_999), gotLunch.AmountCents)

	// ON DELETE CASCADE clears the rest.
	require.NoError(t, store.Itineraries().Delete(ctx, owner.ID, it.ID))
	_, err = store.Expenses().Get(ctx, it.ID, lunch.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	people, err = store.Collaborators().ListByItinerary(ctx, it.ID)
	require.NoError(t, err)
	require.Empty(t, people)
}
