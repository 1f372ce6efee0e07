package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/repository"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureTokenIndexes(db); err != nil {
		log.Printf("⚠️ token index warning: %v", err)
	}

	var mail mailer.Mailer
	if config.AppEnv.SMTPHost != "" {
		mail = mailer.NewSMTP(
			config.AppEnv.SMTPHost,
			config.AppEnv.SMTPPort,
			config.AppEnv.SMTPUser,
			config.AppEnv.SMTPPass,
			config.AppEnv.MailFrom,
		)
	} else {
		log.Println("SMTP_HOST not set, emails will only be logged")
		mail = mailer.NewLogMailer()
	}

	google := auth.NewDisabledVerifier()
	if config.AppEnv.GoogleClientID != "" {
		google, err = auth.NewGoogleVerifier(context.Background(), config.AppEnv.GoogleClientID)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("GOOGLE_CLIENT_ID not set, google signin disabled")
	}

	svc := auth.NewService(
		repository.NewMongoUserStore(db),
		repository.NewMongoTokenStore(db),
		mail,
		google,
		auth.Config{
			JWTSecret:  config.AppEnv.JWTSecret,
			SessionTTL: config.AppEnv.SessionTTL,
			OTPTTL:     config.AppEnv.OTPTTL,
			ResetTTL:   config.AppEnv.ResetTokenTTL,
		},
	)

	r := gin.Default()
	r.Use(middleware.RequestID())

	user := r.Group("/user")
	{
		user.POST("/signup", handlers.Signup(svc))
		user.POST("/verifyOTP", handlers.VerifyOTP(svc))
		user.POST("/resendOTPVerificationCode", handlers.ResendOTP(svc))
		user.POST("/signin", handlers.Signin(svc))
		user.POST("/google-auth", handlers.GoogleAuth(svc))
		user.POST("/requestPasswordReset", handlers.RequestPasswordReset(svc))
		user.POST("/resetPassword", handlers.ResetPassword(svc))

		authed := user.Group("")
		authed.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
		{
			authed.GET("/me", handlers.Me(svc))
			authed.POST("/logout", handlers.Logout())
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
