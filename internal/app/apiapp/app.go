package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MwahCodes/dates-and-debates/internal/config"
	s3infra "github.com/MwahCodes/dates-and-debates/internal/infra/s3"
	leaderboardjob "github.com/MwahCodes/dates-and-debates/internal/jobs/leaderboard"
	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
	redrepo "github.com/MwahCodes/dates-and-debates/internal/repo/redis"
	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	chatsvc "github.com/MwahCodes/dates-and-debates/internal/services/chat"
	feedsvc "github.com/MwahCodes/dates-and-debates/internal/services/feed"
	matchessvc "github.com/MwahCodes/dates-and-debates/internal/services/matches"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	profilesvc "github.com/MwahCodes/dates-and-debates/internal/services/profiles"
	ratesvc "github.com/MwahCodes/dates-and-debates/internal/services/rate"
	ratingsvc "github.com/MwahCodes/dates-and-debates/internal/services/ratings"
	swipesvc "github.com/MwahCodes/dates-and-debates/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	warmer     *leaderboardjob.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	ratingRepo := pgrepo.NewRatingRepo(pool)
	feedRepo := pgrepo.NewFeedRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(authsvc.Dependencies{
		JWT:      jwtManager,
		Users:    userRepo,
		Sessions: sessionRepo,
	}, cfg.Auth.RefreshTTL)

	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.SwipesPerMinute,
		cfg.Limits.SwipesPer10Seconds,
	)

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		MatchStore:  matchRepo,
		UserStore:   userRepo,
		RateLimiter: rateLimiter,
	})
	feedService := feedsvc.NewService(feedRepo, feedsvc.Config{
		DefaultPageSize: cfg.Limits.FeedPageSize,
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:         pool,
		MatchStore:   matchRepo,
		MessageStore: messageRepo,
	})
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		MessageStore: messageRepo,
		MatchStore:   matchRepo,
	}, chatsvc.Config{
		PageSize: cfg.Limits.ChatPageSize,
	})
	chatPoller := chatsvc.NewPoller(messageRepo, cfg.Limits.ChatPollInterval, log)
	ratingService := ratingsvc.NewService(ratingsvc.Dependencies{
		RatingStore: ratingRepo,
		Cache:       cacheRepo,
	}, ratingsvc.Config{
		LeaderboardSize: cfg.Leaderboard.Size,
		CacheTTL:        cfg.Leaderboard.CacheTTL,
	})
	profileService := profilesvc.NewService(userRepo)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaStorage, userRepo)

	warmer := leaderboardjob.New(ratingService, cfg.Leaderboard.RefreshInterval, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		ProfileService: profileService,
		MediaService:   mediaService,
		FeedService:    feedService,
		SwipeService:   swipeService,
		MatchService:   matchesService,
		ChatService:    chatService,
		ChatPoller:     chatPoller,
		RatingService:  ratingService,
		Logger:         log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		warmer:     warmer,
		httpRouter: r,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.warmer.Start(ctx)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
