package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edusphere/backend/models"
	"github.com/edusphere/backend/session"
	"github.com/edusphere/backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var accessSecret = []byte("test-access-secret")

func newTestRouter(t *testing.T) (*gin.Engine, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client)

	r := gin.New()
	r.Use(ErrorHandler())

	auth := IsAuthenticated(store, accessSecret)
	r.GET("/me", auth, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": user.ID.Hex()})
	})
	r.GET("/admin", auth, AuthorizeRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	return r, store
}

func loginUser(t *testing.T, store session.Store, role models.Role) (*models.User, string) {
	t.Helper()
	user := &models.User{
		ID:    bson.NewObjectID(),
		Name:  "A",
		Email: "a@x.com",
		Role:  role,
	}
	require.NoError(t, store.Put(context.Background(), user.ID.Hex(), user))

	token, err := utils.SignSessionToken(user.ID.Hex(), accessSecret, time.Minute)
	require.NoError(t, err)
	return user, token
}

func doGet(r *gin.Engine, path, accessToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: accessToken})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIsAuthenticated_ValidTokenAndSession(t *testing.T) {
	r, store := newTestRouter(t)
	user, token := loginUser(t, store, models.RoleUser)

	w := doGet(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), user.ID.Hex())
}

func TestIsAuthenticated_MissingToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doGet(r, "/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Please login")
}

func TestIsAuthenticated_InvalidToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doGet(r, "/me", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Access token is not valid")
}

func TestIsAuthenticated_ExpiredToken(t *testing.T) {
	r, store := newTestRouter(t)
	user, _ := loginUser(t, store, models.RoleUser)

	expired, err := utils.SignSessionToken(user.ID.Hex(), accessSecret, -time.Second)
	require.NoError(t, err)

	w := doGet(r, "/me", expired)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Token expired")
}

func TestIsAuthenticated_SessionGone(t *testing.T) {
	r, store := newTestRouter(t)
	user, token := loginUser(t, store, models.RoleUser)

	require.NoError(t, store.Delete(context.Background(), user.ID.Hex()))

	w := doGet(r, "/me", token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "User session not found")
}

func TestAuthorizeRole(t *testing.T) {
	r, store := newTestRouter(t)

	_, userToken := loginUser(t, store, models.RoleUser)
	w := doGet(r, "/admin", userToken)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "not authorized")

	r2, store2 := newTestRouter(t)
	_, adminToken := loginUser(t, store2, models.RoleAdmin)
	w = doGet(r2, "/admin", adminToken)
	require.Equal(t, http.StatusOK, w.Code)
}
