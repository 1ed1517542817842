package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/edusphere/backend/dto"
	"github.com/edusphere/backend/mail"
	"github.com/edusphere/backend/middleware"
	"github.com/edusphere/backend/models"
	"github.com/edusphere/backend/repository"
	"github.com/edusphere/backend/session"
	"github.com/edusphere/backend/storage"
	"github.com/edusphere/backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthConfig carries the three signing secrets and their ttls. Compromise of
// one secret must not allow forging another purpose's tokens.
type AuthConfig struct {
	ActivationSecret []byte
	AccessSecret     []byte
	RefreshSecret    []byte
	ActivationTTL    time.Duration
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	Production       bool
}

type UserController struct {
	users    repository.UserRepository
	sessions session.Store
	mailer   mail.Mailer
	media    storage.MediaStore
	cfg      AuthConfig
}

func NewUserController(users repository.UserRepository, sessions session.Store, mailer mail.Mailer, media storage.MediaStore, cfg AuthConfig) *UserController {
	return &UserController{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		media:    media,
		cfg:      cfg,
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// POST /register
func (uc *UserController) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		email := utils.NormalizeEmail(body.Email)

		_, err := uc.users.FindByEmail(c.Request.Context(), email)
		if err == nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "User already exists"))
			return
		}
		if !errors.Is(err, repository.ErrNotFound) {
			fail(c, err)
			return
		}

		activationCode, err := utils.GenerateActivationCode()
		if err != nil {
			fail(c, err)
			return
		}

		pending := utils.PendingRegistration{
			Name:     body.Name,
			Email:    email,
			Password: body.Password,
		}
		token, err := utils.SignActivationToken(pending, activationCode, uc.cfg.ActivationSecret, uc.cfg.ActivationTTL)
		if err != nil {
			fail(c, err)
			return
		}

		// Nothing is persisted yet; the account exists only after activation.
		data := map[string]interface{}{
			"Name":           pending.Name,
			"ActivationCode": activationCode,
		}
		if err := uc.mailer.Send(email, "Verify Email", "verify-mail.html", data); err != nil {
			log.Printf("activation mail to %s failed: %v", email, err)
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Failed to send activation email"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Activation code sent to " + email,
			"token":   token,
		})
	}
}

// POST /activate
func (uc *UserController) Activate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ActivateDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		claims, err := utils.VerifyActivationToken(body.ActivationToken, uc.cfg.ActivationSecret)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				fail(c, utils.NewAPIError(http.StatusBadRequest, "Activation token expired"))
				return
			}
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid activation token"))
			return
		}

		if claims.ActivationCode != body.ActivationCode {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid activation code"))
			return
		}

		if _, err := uc.users.FindByEmail(c.Request.Context(), claims.User.Email); err == nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "User already exists"))
			return
		} else if !errors.Is(err, repository.ErrNotFound) {
			fail(c, err)
			return
		}

		hash, err := utils.HashPassword(claims.User.Password)
		if err != nil {
			fail(c, err)
			return
		}

		user := &models.User{
			Name:         claims.User.Name,
			Email:        claims.User.Email,
			PasswordHash: hash,
			Role:         models.RoleUser,
		}
		if err := uc.users.Create(c.Request.Context(), user); err != nil {
			// The unique index is the arbiter for concurrent registrations.
			if errors.Is(err, repository.ErrDuplicateEmail) {
				fail(c, utils.NewAPIError(http.StatusBadRequest, "User already exists"))
				return
			}
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User created successfully",
		})
	}
}

// POST /login
func (uc *UserController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		user, err := uc.users.FindByEmail(c.Request.Context(), utils.NormalizeEmail(body.Email))
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid email or password"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		// Social accounts have no password and cannot log in with one.
		if user.PasswordHash == "" || utils.CheckPassword(user.PasswordHash, body.Password) != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid email or password"))
			return
		}

		uc.issueSession(c, user)
	}
}

// GET /logout
func (uc *UserController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.ClearAuthCookies(c, uc.cfg.Production)

		if user, ok := middleware.CurrentUser(c); ok {
			if err := uc.sessions.Delete(c.Request.Context(), user.ID.Hex()); err != nil {
				fail(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Successfully logged out",
		})
	}
}

// GET /updatetoken
func (uc *UserController) RefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie("refreshToken")
		if err != nil || refreshToken == "" {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid refresh token"))
			return
		}

		claims, err := utils.VerifySessionToken(refreshToken, uc.cfg.RefreshSecret)
		if err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid refresh token"))
			return
		}

		// Logout deletes the session, which is what invalidates refresh
		// tokens that are still cryptographically valid.
		user, err := uc.sessions.Get(c.Request.Context(), claims.UserID)
		if errors.Is(err, session.ErrNotFound) {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Session not found"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		userID := user.ID.Hex()
		accessToken, err := utils.SignSessionToken(userID, uc.cfg.AccessSecret, uc.cfg.AccessTTL)
		if err != nil {
			fail(c, err)
			return
		}
		newRefreshToken, err := utils.SignSessionToken(userID, uc.cfg.RefreshSecret, uc.cfg.RefreshTTL)
		if err != nil {
			fail(c, err)
			return
		}

		// Rewrite the session from the store's own prior value.
		if err := uc.sessions.Put(c.Request.Context(), userID, user); err != nil {
			fail(c, err)
			return
		}

		utils.SetAuthCookies(c, accessToken, newRefreshToken, uc.cfg.AccessTTL, uc.cfg.RefreshTTL, uc.cfg.Production)
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Access token updated successfully",
			"accessToken": accessToken,
		})
	}
}

// GET /user
func (uc *UserController) GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, utils.NewAPIError(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}

		user, err := uc.sessions.Get(c.Request.Context(), identity.ID.Hex())
		if errors.Is(err, session.ErrNotFound) {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "User session not found"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
	}
}

// POST /socialauth
func (uc *UserController) SocialAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SocialAuthDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		email := utils.NormalizeEmail(body.Email)

		user, err := uc.users.FindByEmail(c.Request.Context(), email)
		if errors.Is(err, repository.ErrNotFound) {
			// The upstream provider already verified this identity; the
			// account is created without a password or activation step.
			user = &models.User{
				Name:   body.Name,
				Email:  email,
				Avatar: models.Avatar{URL: body.Avatar},
				Role:   models.RoleUser,
			}
			if err := uc.users.Create(c.Request.Context(), user); err != nil {
				fail(c, err)
				return
			}
		} else if err != nil {
			fail(c, err)
			return
		}

		uc.issueSession(c, user)
	}
}

// PUT /updateprofile
func (uc *UserController) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProfileDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		identity, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, utils.NewAPIError(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}

		user, err := uc.users.FindByID(c.Request.Context(), identity.ID.Hex())
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid user"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		if body.Email != "" {
			email := utils.NormalizeEmail(body.Email)
			if email != user.Email {
				if _, err := uc.users.FindByEmail(c.Request.Context(), email); err == nil {
					fail(c, utils.NewAPIError(http.StatusBadRequest, "Email already exists"))
					return
				} else if !errors.Is(err, repository.ErrNotFound) {
					fail(c, err)
					return
				}
				user.Email = email
			}
		}
		if body.Name != "" {
			user.Name = body.Name
		}

		if err := uc.users.Save(c.Request.Context(), user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				fail(c, utils.NewAPIError(http.StatusBadRequest, "Email already exists"))
				return
			}
			fail(c, err)
			return
		}

		if err := uc.sessions.Put(c.Request.Context(), user.ID.Hex(), user); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Successfully updated user info",
			"user":    user,
		})
	}
}

// PUT /updatepassword
func (uc *UserController) UpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdatePasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		identity, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, utils.NewAPIError(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}

		user, err := uc.users.FindByID(c.Request.Context(), identity.ID.Hex())
		if errors.Is(err, repository.ErrNotFound) || (err == nil && user.PasswordHash == "") {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid user"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		if utils.CheckPassword(user.PasswordHash, body.OldPassword) != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid password"))
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			fail(c, err)
			return
		}
		user.PasswordHash = hash

		if err := uc.users.Save(c.Request.Context(), user); err != nil {
			fail(c, err)
			return
		}
		if err := uc.sessions.Put(c.Request.Context(), user.ID.Hex(), user); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Password updated",
			"user":    user,
		})
	}
}

// PUT /updateavatar
func (uc *UserController) UpdateAvatar() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateAvatarDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, utils.NewAPIError(http.StatusBadRequest, err.Error()))
			return
		}

		identity, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, utils.NewAPIError(http.StatusUnauthorized, "Please login to access this resource"))
			return
		}

		user, err := uc.users.FindByID(c.Request.Context(), identity.ID.Hex())
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid user"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		if user.Avatar.ProfileID != "" {
			// A stale object in the media store is not worth failing the
			// request over.
			if err := uc.media.Destroy(c.Request.Context(), user.Avatar.ProfileID); err != nil {
				log.Printf("destroy old avatar %s: %v", user.Avatar.ProfileID, err)
			}
		}

		media, err := uc.media.Upload(c.Request.Context(), body.Avatar)
		if errors.Is(err, storage.ErrInvalidImage) {
			fail(c, utils.NewAPIError(http.StatusBadRequest, "Invalid avatar image"))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		user.Avatar = models.Avatar{ProfileID: media.ID, URL: media.URL}

		if err := uc.users.Save(c.Request.Context(), user); err != nil {
			fail(c, err)
			return
		}
		if err := uc.sessions.Put(c.Request.Context(), user.ID.Hex(), user); err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Successfully updated user avatar",
			"user":    user,
		})
	}
}
