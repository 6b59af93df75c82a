package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/seekershq/seekers-backend/internal/config"
	"github.com/seekershq/seekers-backend/internal/database"
	"github.com/seekershq/seekers-backend/internal/handlers"
	"github.com/seekershq/seekers-backend/internal/middleware"
	"github.com/seekershq/seekers-backend/internal/realtime"
	"github.com/seekershq/seekers-backend/internal/routes"
	"github.com/seekershq/seekers-backend/internal/services"
	"github.com/seekershq/seekers-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Stores
	users := store.NewUserStore(database.PostgresDB)
	temps := store.NewTempUserStore(database.PostgresDB)
	chats := store.NewChatStore(database.PostgresDB)
	galleries := store.NewGalleryStore(database.PostgresDB)

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	mailer := services.NewMailtrapSender(cfg.MailtrapAPIURL, cfg.MailtrapAPIKey, cfg.MailtrapFromEmail, cfg.MailtrapFromName)
	authSvc := services.NewAuthService(users, temps, mailer, tokens, services.EmailTemplates{
		SignupOTP: cfg.SignupOTPTemplate,
		LoginOTP:  cfg.LoginOTPTemplate,
		ResetOTP:  cfg.ResetOTPTemplate,
	})
	chatSvc := services.NewChatService(chats, users)

	storage, err := services.NewCloudinaryStorage(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatal("Failed to initialize Cloudinary:", err)
	}
	gallerySvc := services.NewGalleryService(galleries, storage)

	// Realtime fan-out
	hub := realtime.NewHub()
	bridge := realtime.NewBridge(hub, database.RedisClient)
	bridge.Start(context.Background())

	authMW := middleware.NewAuthenticator(tokens)
	limiter := middleware.NewRateLimiter(database.RedisClient)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	}
	r.Use(limiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc),
		Chat:    handlers.NewChatHandler(chatSvc, bridge),
		Gallery: handlers.NewGalleryHandler(gallerySvc),
		WS:      handlers.NewWSHandler(hub, bridge, chatSvc, tokens),
	}, authMW)

	log.Printf("🚀 Seekers backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
