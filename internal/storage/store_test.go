package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/config"
	"github.com/eldos/workmarket/internal/db"
	"github.com/eldos/workmarket/internal/schema"
	"github.com/eldos/workmarket/internal/storage"
)

func newTestStore(t *testing.T) (*storage.Store, *schema.Registry) {
	t.Helper()
	registry := schema.Default()
	cfg := &config.Config{
		Environment: "test",
		DB:          config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"},
	}
	database, err := db.New(cfg, zerolog.Nop(), registry)
	require.NoError(t, err)
	return storage.NewStore(database), registry
}

func userFields(first string) map[string]any {
	return map[string]any{
		"first_name": first,
		"last_name":  "Lee",
		"age":        int64(30),
		"email":      "a@x.com",
		"role":       "customer",
		"phone":      "555",
	}
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")
	ctx := context.Background()

	first, err := store.Insert(ctx, users, userFields("Ann"))
	require.NoError(t, err)
	second, err := store.Insert(ctx, users, userFields("Bea"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestGetReturnsInsertedRow(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")
	ctx := context.Background()

	id, err := store.Insert(ctx, users, userFields("Ann"))
	require.NoError(t, err)

	row, err := store.Get(ctx, users, id)
	require.NoError(t, err)
	assert.EqualValues(t, id, row["id"])
	assert.Equal(t, "Ann", row["first_name"])
	assert.EqualValues(t, 30, row["age"])
}

func TestGetAbsentRow(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")

	_, err := store.Get(context.Background(), users, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDateColumnsRoundTripAsISO(t *testing.T) {
	store, registry := newTestStore(t)
	orders, _ := registry.Resolve("orders")
	ctx := context.Background()

	id, err := store.Insert(ctx, orders, map[string]any{
		"name":        "n",
		"description": "d",
		"start_date":  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"end_date":    time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		"address":     "a",
		"price":       int64(10),
		"customer_id": int64(1),
		"executor_id": int64(2),
	})
	require.NoError(t, err)

	row, err := store.Get(ctx, orders, id)
	require.NoError(t, err)

	cdc := codec.New(codec.Options{})
	startField, _ := orders.Field("start_date")
	endField, _ := orders.Field("end_date")

	start, err := cdc.WireValue(startField, row["start_date"])
	require.NoError(t, err)
	end, err := cdc.WireValue(endField, row["end_date"])
	require.NoError(t, err)

	assert.Equal(t, "2024-01-15", start)
	assert.Equal(t, "2024-01-20", end)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")
	ctx := context.Background()

	for _, name := range []string{"Ann", "Bea", "Cai"} {
		_, err := store.Insert(ctx, users, userFields(name))
		require.NoError(t, err)
	}

	rows, err := store.List(ctx, users)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ann", rows[0]["first_name"])
	assert.Equal(t, "Cai", rows[2]["first_name"])
}

func TestListEmptyTable(t *testing.T) {
	store, registry := newTestStore(t)
	offers, _ := registry.Resolve("offers")

	rows, err := store.List(context.Background(), offers)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateOverwritesEveryColumn(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")
	ctx := context.Background()

	id, err := store.Insert(ctx, users, userFields("Ann"))
	require.NoError(t, err)

	updated := userFields("Bea")
	updated["role"] = "executor"
	require.NoError(t, store.Update(ctx, users, id, updated))

	row, err := store.Get(ctx, users, id)
	require.NoError(t, err)
	assert.Equal(t, "Bea", row["first_name"])
	assert.Equal(t, "executor", row["role"])
	assert.EqualValues(t, id, row["id"])
}

func TestUpdateAbsentRow(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")

	err := store.Update(context.Background(), users, 999, userFields("Ann"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteRemovesRow(t *testing.T) {
	store, registry := newTestStore(t)
	users, _ := registry.Resolve("users")
	ctx := context.Background()

	id, err := store.Insert(ctx, users, userFields("Ann"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, users, id))

	_, err = store.Get(ctx, users, id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = store.Delete(ctx, users, id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
