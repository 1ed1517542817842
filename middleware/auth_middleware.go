package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/edusphere/backend/models"
	"github.com/edusphere/backend/session"
	"github.com/edusphere/backend/utils"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// IsAuthenticated checks the access-token cookie against the codec and the
// session store, and puts the stored account snapshot into the request
// context for downstream handlers.
func IsAuthenticated(sessions session.Store, accessSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie("accessToken")
		if err != nil || accessToken == "" {
			abortWithError(c, utils.NewAPIError(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}

		claims, err := utils.VerifySessionToken(accessToken, accessSecret)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				abortWithError(c, utils.NewAPIError(http.StatusUnauthorized, "Token expired"))
				return
			}
			abortWithError(c, utils.NewAPIError(http.StatusUnauthorized, "Access token is not valid"))
			return
		}

		user, err := sessions.Get(c.Request.Context(), claims.UserID)
		if errors.Is(err, session.ErrNotFound) {
			abortWithError(c, utils.NewAPIError(http.StatusBadRequest, "User session not found"))
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// AuthorizeRole gates a route to the given roles. Runs after IsAuthenticated.
func AuthorizeRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWithError(c, utils.NewAPIError(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		abortWithError(c, utils.NewAPIError(http.StatusForbidden,
			fmt.Sprintf("User role %s is not authorized to access this resource", user.Role)))
	}
}

// CurrentUser returns the authenticated identity set by IsAuthenticated.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
