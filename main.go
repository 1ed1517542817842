package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/edusphere/backend/controllers"
	"github.com/edusphere/backend/database"
	"github.com/edusphere/backend/mail"
	"github.com/edusphere/backend/middleware"
	"github.com/edusphere/backend/repository"
	"github.com/edusphere/backend/session"
	"github.com/edusphere/backend/storage"
	"github.com/edusphere/backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx := context.Background()

	db, err := database.Connect(ctx)
	if err != nil {
		log.Fatal("mongo connect: ", err)
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("ensure indexes: ", err)
	}
	users := repository.NewMongoUserRepository(db)

	if err := utils.SeedAdminUser(ctx, users); err != nil {
		log.Fatal("seed admin: ", err)
	}

	redisClient, err := database.ConnectRedis(ctx)
	if err != nil {
		log.Fatal("redis connect: ", err)
	}
	sessions := session.NewRedisStore(redisClient)

	media, err := storage.NewGCSMediaStore(ctx)
	if err != nil {
		log.Fatal("media store: ", err)
	}

	cfg := controllers.AuthConfig{
		ActivationSecret: []byte(os.Getenv("ACTIVATION_TOKEN_SECRET")),
		AccessSecret:     []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshSecret:    []byte(os.Getenv("REFRESH_TOKEN_SECRET")),
		ActivationTTL:    utils.ActivationTTL(),
		AccessTTL:        utils.AccessTTL(),
		RefreshTTL:       utils.RefreshTTL(),
		Production:       utils.IsProduction(),
	}
	uc := controllers.NewUserController(users, sessions, mail.NewSMTPMailer(), media, cfg)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(os.Getenv("ORIGIN"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins[origin] = true
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Welcome to my Server"})
	})

	auth := middleware.IsAuthenticated(sessions, cfg.AccessSecret)

	api := r.Group("/api/v1")
	{
		api.POST("/register", uc.Register())
		api.POST("/activate", uc.Activate())
		api.POST("/login", uc.Login())
		api.GET("/logout", auth, uc.Logout())
		api.GET("/updatetoken", uc.RefreshToken())
		api.GET("/user", auth, uc.GetUser())
		api.POST("/socialauth", uc.SocialAuth())
		api.PUT("/updateprofile", auth, uc.UpdateProfile())
		api.PUT("/updatepassword", auth, uc.UpdatePassword())
		api.PUT("/updateavatar", auth, uc.UpdateAvatar())
	}

	r.NoRoute(middleware.NotFoundHandler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
