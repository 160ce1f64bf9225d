package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldos/workmarket/internal/schema"
)

func TestResolveKnownKinds(t *testing.T) {
	registry := schema.Default()

	for token, table := range map[string]string{
		"users":  "user",
		"orders": "order",
		"offers": "offer",
	} {
		kind, err := registry.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, token, kind.Name)
		assert.Equal(t, table, kind.Table)
	}
}

func TestResolveUnknownKind(t *testing.T) {
	registry := schema.Default()

	_, err := registry.Resolve("gadgets")
	assert.ErrorIs(t, err, schema.ErrUnknownKind)
	assert.Contains(t, err.Error(), "gadgets")
}

func TestDataFieldsExcludePrimaryKey(t *testing.T) {
	registry := schema.Default()

	users, err := registry.Resolve("users")
	require.NoError(t, err)

	names := make([]string, 0, len(users.Fields))
	for _, f := range users.DataFields() {
		assert.False(t, f.PrimaryKey)
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"first_name", "last_name", "age", "email", "role", "phone"}, names)
}

func TestForeignKeyDeclarations(t *testing.T) {
	registry := schema.Default()

	orders, err := registry.Resolve("orders")
	require.NoError(t, err)
	customer, ok := orders.Field("customer_id")
	require.True(t, ok)
	assert.Equal(t, "users", customer.References)

	offers, err := registry.Resolve("offers")
	require.NoError(t, err)
	orderRef, ok := offers.Field("order_id")
	require.True(t, ok)
	assert.Equal(t, "orders", orderRef.References)
	executor, ok := offers.Field("executor_id")
	require.True(t, ok)
	assert.Equal(t, "users", executor.References)
}
