package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"copyflow/cmd/fx/account_fx"
	"copyflow/cmd/fx/billing_fx"
	"copyflow/cmd/fx/db_fx"
	"copyflow/cmd/fx/generation_fx"
	"copyflow/cmd/fx/webhook_fx"
	"copyflow/internal/api/controllers"
	"copyflow/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	app := fx.New(
		db_fx.Module,
		account_fx.Module,
		billing_fx.Module,
		webhook_fx.Module,
		generation_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	billingController *controllers.BillingController,
	webhookController *controllers.WebhookController,
	generationController *controllers.GenerationController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, accountController, billingController, webhookController, generationController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	billingController *controllers.BillingController,
	webhookController *controllers.WebhookController,
	generationController *controllers.GenerationController) {

	authGroup := r.Group("/auth")
	authGroup.POST("/signup", accountController.SignUp)
	authGroup.POST("/login", accountController.Login)
	authGroup.POST("/forgot-password", accountController.ForgotPassword)
	authGroup.POST("/reset-password", accountController.ResetPassword)
	authGroup.GET("/me", middleware.JWTAuthMiddleware(), accountController.Me)

	paymentsGroup := r.Group("/payments")
	paymentsGroup.GET("/plans", billingController.ListPlans)
	paymentsGroup.POST("/create-checkout", middleware.JWTAuthMiddleware(), billingController.CreateCheckout)

	// Gateway-facing, authenticated by signature, not by JWT.
	r.POST("/webhook", webhookController.HandleNotification)

	generationsGroup := r.Group("/generations", middleware.JWTAuthMiddleware())
	generationsGroup.POST("", generationController.Generate)
	generationsGroup.GET("", generationController.List)
}
