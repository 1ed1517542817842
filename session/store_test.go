package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/edusphere/backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestStore_PutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		ID:    bson.NewObjectID(),
		Name:  "A",
		Email: "a@x.com",
		Role:  models.RoleUser,
	}
	id := user.ID.Hex()

	require.NoError(t, store.Put(ctx, id, user))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, user.Role, got.Role)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetAbsentIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LastWriterWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id := bson.NewObjectID()
	first := &models.User{ID: id, Name: "first", Email: "a@x.com"}
	second := &models.User{ID: id, Name: "second", Email: "a@x.com"}

	require.NoError(t, store.Put(ctx, id.Hex(), first))
	require.NoError(t, store.Put(ctx, id.Hex(), second))

	got, err := store.Get(ctx, id.Hex())
	require.NoError(t, err)
	require.Equal(t, "second", got.Name)
}

func TestStore_TransportFailureIsNotNotFound(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "any")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteAbsentIsNoError(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Delete(context.Background(), "missing"))
}
