package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/edusphere/backend/repository"
	"github.com/edusphere/backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrorHandler is the single boundary translator: any error attached to the
// context becomes {success:false, message} with the status from the taxonomy.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := translate(err)
		if status == http.StatusInternalServerError {
			log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(status, gin.H{"success": false, "message": message})
	}
}

func translate(err error) (int, string) {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusBadRequest, "Duplicate email entered"
	case errors.Is(err, bson.ErrInvalidHex):
		return http.StatusBadRequest, "Resource not found. Invalid id"
	case errors.Is(err, utils.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, utils.ErrTokenMalformed), errors.Is(err, utils.ErrTokenSignature):
		return http.StatusUnauthorized, "Invalid token"
	}

	return http.StatusInternalServerError, "Internal server error"
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Route " + c.Request.URL.Path + " not found",
		})
	}
}
