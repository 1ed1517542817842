package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// NormalizeEmail lowercases, trims and NFC-normalizes so that lookups and the
// unique index agree on one canonical form.
func NormalizeEmail(email string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(email)))
}

// GenerateActivationCode returns a uniformly random 4-digit code. Collisions
// between in-flight codes are acceptable; the code is only checked against
// the one embedded in the matching activation token.
func GenerateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

func AccessTTL() time.Duration {
	minStr := os.Getenv("ACCESS_TOKEN_TTL_MINUTES")
	min, _ := strconv.Atoi(minStr)
	if min <= 0 {
		min = 5
	}
	return time.Duration(min) * time.Minute
}

func RefreshTTL() time.Duration {
	dStr := os.Getenv("REFRESH_TOKEN_TTL_DAYS")
	days, _ := strconv.Atoi(dStr)
	if days <= 0 {
		days = 3
	}
	return time.Duration(days) * 24 * time.Hour
}

func ActivationTTL() time.Duration {
	minStr := os.Getenv("ACTIVATION_TOKEN_TTL_MINUTES")
	min, _ := strconv.Atoi(minStr)
	if min <= 0 {
		min = 60
	}
	return time.Duration(min) * time.Minute
}

func IsProduction() bool {
	return os.Getenv("APP_ENV") == "production"
}

// SetAuthCookies writes the access and refresh token cookies. Max-Age tracks
// the ttl of the matching token.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration, production bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookies(c *gin.Context, production bool) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   production,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
