package controllers

import (
	"net/http"

	"github.com/edusphere/backend/models"
	"github.com/edusphere/backend/utils"
	"github.com/gin-gonic/gin"
)

// issueSession mints the access/refresh pair, writes the session record and
// sets both cookies. Login and social auth share it. Any prior session for
// the account is overwritten.
func (uc *UserController) issueSession(c *gin.Context, user *models.User) {
	userID := user.ID.Hex()

	accessToken, err := utils.SignSessionToken(userID, uc.cfg.AccessSecret, uc.cfg.AccessTTL)
	if err != nil {
		fail(c, err)
		return
	}
	refreshToken, err := utils.SignSessionToken(userID, uc.cfg.RefreshSecret, uc.cfg.RefreshTTL)
	if err != nil {
		fail(c, err)
		return
	}

	if err := uc.sessions.Put(c.Request.Context(), userID, user); err != nil {
		fail(c, err)
		return
	}

	utils.SetAuthCookies(c, accessToken, refreshToken, uc.cfg.AccessTTL, uc.cfg.RefreshTTL, uc.cfg.Production)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user":        user,
		"accessToken": accessToken,
	})
}
