package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &Session{
		ChatID:        42,
		State:         StateWaitingPayment,
		OrderID:       "order_42_1",
		TransactionID: "tx-1",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StateWaitingPayment, got.State)
	assert.Equal(t, "order_42_1", got.OrderID)

	// The store hands out copies, mutating the result must not leak
	// back in.
	got.State = StateCompleted
	again, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StateWaitingPayment, again.State)

	require.NoError(t, store.Delete(ctx, 42))
	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_FindByOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, &Session{
		ChatID:        1,
		OrderID:       "order_1_100",
		TransactionID: "tx-a",
	}))
	require.NoError(t, store.Put(ctx, &Session{
		ChatID:        2,
		OrderID:       "order_2_200",
		TransactionID: "tx-b",
	}))

	byOrder, err := store.FindByOrder(ctx, "order_2_200")
	require.NoError(t, err)
	assert.EqualValues(t, 2, byOrder.ChatID)

	byTx, err := store.FindByOrder(ctx, "tx-a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, byTx.ChatID)

	_, err = store.FindByOrder(ctx, "order_3_300")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByOrder(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
