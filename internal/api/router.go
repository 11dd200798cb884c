package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/maxxlamenaace/roomio-be/internal/api/handlers"
	"github.com/maxxlamenaace/roomio-be/internal/auth"
	"github.com/maxxlamenaace/roomio-be/internal/services"
	"github.com/maxxlamenaace/roomio-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	topicService services.TopicServiceProvider,
	roomService services.RoomServiceProvider,
	messageService services.MessageServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Resolve the requester's session on every request.
	r.Use(auth.WithUser)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, eventService)
	homeHandler := handlers.NewHomeHandler(roomService, topicService, messageService, eventService)
	roomHandler := handlers.NewRoomHandler(roomService, topicService, messageService, eventService, hub)
	messageHandler := handlers.NewMessageHandler(messageService, eventService)
	profileHandler := handlers.NewProfileHandler(userService, roomService, messageService, topicService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Public routes
	r.Get("/", homeHandler.Home)
	r.Get("/topics", homeHandler.Topics)
	r.Get("/activity", homeHandler.Activity)

	r.Get("/login/", authHandler.LoginForm)
	r.Post("/login/", authHandler.Login)
	r.Get("/register/", authHandler.RegisterForm)
	r.Post("/register/", authHandler.Register)
	r.Get("/logout/", authHandler.Logout)

	r.Get("/user-profile/{id}", profileHandler.View)

	r.Get("/room/{id}/", roomHandler.View)
	r.Post("/room/{id}/", roomHandler.Post)

	// Live feed endpoints
	r.Get("/ws", wsHandler.Serve)
	r.Get("/ws/rooms/{id}", wsHandler.Serve)

	// Routes requiring an authenticated session
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/create-room/", roomHandler.CreateForm)
		r.Post("/create-room/", roomHandler.Create)

		r.Get("/update-room/{id}/", roomHandler.UpdateForm)
		r.Post("/update-room/{id}/", roomHandler.Update)

		r.Get("/delete-room/{id}/", roomHandler.DeleteConfirm)
		r.Post("/delete-room/{id}/", roomHandler.Delete)

		r.Get("/delete-message/{id}/", messageHandler.DeleteConfirm)
		r.Post("/delete-message/{id}/", messageHandler.Delete)
	})

	return r
}
