package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	chatsvc "github.com/MwahCodes/dates-and-debates/internal/services/chat"
	feedsvc "github.com/MwahCodes/dates-and-debates/internal/services/feed"
	matchessvc "github.com/MwahCodes/dates-and-debates/internal/services/matches"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	profilesvc "github.com/MwahCodes/dates-and-debates/internal/services/profiles"
	ratingsvc "github.com/MwahCodes/dates-and-debates/internal/services/ratings"
	swipesvc "github.com/MwahCodes/dates-and-debates/internal/services/swipes"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	ProfileService *profilesvc.Service
	MediaService   *mediasvc.Service
	FeedService    *feedsvc.Service
	SwipeService   *swipesvc.Service
	MatchService   *matchessvc.Service
	ChatService    *chatsvc.Service
	ChatPoller     *chatsvc.Poller
	RatingService  *ratingsvc.Service
	Logger         *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.MediaService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService, deps.MediaService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService, deps.MediaService)
	chatHandler := handlers.NewChatHandler(deps.ChatService, deps.ChatPoller)
	ratingHandler := handlers.NewRatingHandler(deps.RatingService, deps.MediaService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.With(authMW).Get("/me", profileHandler.Me)
	r.With(authMW).Put("/me", profileHandler.Update)
	r.With(authMW).Post("/me/avatar", mediaHandler.AvatarUpload)

	r.With(authMW).Get("/feed", feedHandler.Handle)
	r.With(authMW).Post("/swipes", swipeHandler.Handle)
	r.With(authMW).Get("/matches", matchesHandler.Handle)
	r.With(authMW).Post("/unmatch", matchesHandler.Unmatch)

	r.Route("/chat", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/threads", chatHandler.Threads)
		r.Post("/messages", chatHandler.Send)
		r.Get("/{partner_id}/messages", chatHandler.Conversation)
		r.Get("/{partner_id}/stream", chatHandler.Stream)
		r.Post("/{partner_id}/read", chatHandler.MarkRead)
	})

	r.Route("/ratings", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", ratingHandler.Submit)
		r.Get("/me", ratingHandler.MyStats)
		r.Get("/leaderboard", ratingHandler.Leaderboard)
	})
}
