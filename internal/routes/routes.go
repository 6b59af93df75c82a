package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/seekershq/seekers-backend/internal/handlers"
	"github.com/seekershq/seekers-backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Chat    *handlers.ChatHandler
	Gallery *handlers.GalleryHandler
	WS      *handlers.WSHandler
}

func SetupRoutes(r *chi.Mux, h Handlers, auth *middleware.Authenticator) {
	// Public auth routes
	r.Post("/api/auth/signup", h.Auth.Signup)
	r.Post("/api/auth/verify-otp", h.Auth.VerifyOtp)
	r.Post("/api/auth/resend-otp", h.Auth.ResendOtp)
	r.Post("/api/auth/login", h.Auth.Login)
	r.Post("/api/auth/verify-login-otp", h.Auth.VerifyLoginOtp)
	r.Post("/api/auth/resend-login-otp", h.Auth.ResendLoginOtp)
	r.Post("/api/auth/forgot-password", h.Auth.ForgotPassword)
	r.Post("/api/auth/reset-password", h.Auth.ResetPassword)
	r.Post("/api/auth/logout", h.Auth.Logout)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/api/auth/me", h.Auth.Me)

		// Chat requests
		r.Post("/api/chat/requests", h.Chat.SendRequest)
		r.Get("/api/chat/requests", h.Chat.AllRequests)
		r.Get("/api/chat/requests/pending", h.Chat.PendingRequests)
		r.Get("/api/chat/requests/sent", h.Chat.SentRequests)
		r.Post("/api/chat/requests/{requestID}/accept", h.Chat.AcceptRequest)
		r.Post("/api/chat/requests/{requestID}/reject", h.Chat.RejectRequest)
		r.Delete("/api/chat/requests/{requestID}", h.Chat.CancelRequest)
		r.Get("/api/chat/allowed/{userID}", h.Chat.ChatAllowed)

		// Conversations and messages
		r.Get("/api/chat/conversations", h.Chat.Conversations)
		r.Post("/api/chat/conversations", h.Chat.OpenConversation)
		r.Get("/api/chat/conversations/{conversationID}/messages", h.Chat.Messages)
		r.Get("/api/chat/conversations/{conversationID}/search", h.Chat.SearchMessages)
		r.Patch("/api/chat/conversations/{conversationID}/read", h.Chat.MarkAsRead)
		r.Post("/api/chat/messages", h.Chat.SendMessage)
		r.Delete("/api/chat/messages/{messageID}", h.Chat.DeleteMessage)
		r.Get("/api/chat/messages/unread-count", h.Chat.UnreadCount)
		r.Get("/api/chat/messages/unread", h.Chat.UnreadByConversation)

		// Gallery
		r.Post("/api/gallery", h.Gallery.Upload)
		r.Get("/api/gallery/{userID}", h.Gallery.List)
		r.Delete("/api/gallery/{itemID}", h.Gallery.Delete)
	})

	// WebSocket endpoint; authenticates its own handshake so browser clients
	// can pass the token as a query parameter.
	r.Get("/ws/chat", h.WS.Serve)
}
