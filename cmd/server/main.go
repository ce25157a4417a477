package main

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/vedran77/linkup/internal/config"
	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/presence"
	postgresrepo "github.com/vedran77/linkup/internal/repository/postgres"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/handlers"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
	"github.com/vedran77/linkup/internal/transport/ws"
	"github.com/vedran77/linkup/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env)

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Presence (best effort, degrades without Redis)
	presenceStore := presence.Connect(cfg.RedisURL)

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	friendRepo := postgresrepo.NewFriendRepo(pool)
	callRepo := postgresrepo.NewCallRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	convService := service.NewConversationService(convRepo, userRepo, presenceStore)
	messageService := service.NewMessageService(messageRepo, convRepo)
	friendService := service.NewFriendService(friendRepo, userRepo)
	callService := service.NewCallService(callRepo, userRepo)

	// WebSocket hub + notifier
	hub := ws.NewHub(presenceStore)
	go hub.Run()

	notifier := ws.NewHubNotifier(hub)
	convService.SetNotifier(notifier)
	messageService.SetNotifier(notifier)
	friendService.SetNotifier(notifier)
	callService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	convHandler := handlers.NewConversationHandler(convService)
	messageHandler := handlers.NewMessageHandler(messageService)
	friendHandler := handlers.NewFriendHandler(friendService)
	callHandler := handlers.NewCallHandler(callService)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	loginLimiter := middleware.NewIPRateLimiter(rate.Limit(5), 10)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("POST /api/auth/register", loginLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))

	// Protected - Profile
	mux.Handle("GET /api/auth/profile", auth(http.HandlerFunc(authHandler.GetProfile)))
	mux.Handle("PUT /api/auth/profile", auth(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("PUT /api/auth/email", auth(http.HandlerFunc(authHandler.ChangeEmail)))
	mux.Handle("PUT /api/auth/password", auth(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("PUT /api/auth/notifications", auth(http.HandlerFunc(authHandler.UpdateNotifications)))

	// Protected - Conversations
	mux.Handle("GET /api/conversations", auth(http.HandlerFunc(convHandler.List)))
	mux.Handle("POST /api/conversations", auth(http.HandlerFunc(convHandler.GetOrCreate)))
	mux.Handle("GET /api/conversations/unread", auth(http.HandlerFunc(convHandler.UnreadCounts)))

	// Protected - Messages
	mux.Handle("POST /api/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/messages/{conversationId}", auth(http.HandlerFunc(messageHandler.List)))
	mux.Handle("PUT /api/messages/{messageId}/read", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("PUT /api/messages/{messageId}/favorite", auth(http.HandlerFunc(messageHandler.ToggleFavorite)))

	// Protected - Friends
	mux.Handle("POST /api/friends/request", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /api/friends/request/{requestId}", auth(http.HandlerFunc(friendHandler.Respond)))
	mux.Handle("GET /api/friends/requests", auth(http.HandlerFunc(friendHandler.ListIncoming)))

	// Protected - Calls
	mux.Handle("POST /api/calls", auth(http.HandlerFunc(callHandler.Create)))
	mux.Handle("PUT /api/calls/{callId}", auth(http.HandlerFunc(callHandler.UpdateStatus)))
	mux.Handle("GET /api/calls/history", auth(http.HandlerFunc(callHandler.History)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, convService, messageService, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
