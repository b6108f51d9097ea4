package server

import (
	"log"
	"strings"
	"time"

	"anoa.com/nawhoknow/internal/config"
	"anoa.com/nawhoknow/internal/jobs"
	"anoa.com/nawhoknow/internal/middleware"
	"anoa.com/nawhoknow/pkg/storage"

	activityHttp "anoa.com/nawhoknow/internal/modules/activity/delivery/http"
	activityRepo "anoa.com/nawhoknow/internal/modules/activity/repository"
	activityService "anoa.com/nawhoknow/internal/modules/activity/service"

	adminHttp "anoa.com/nawhoknow/internal/modules/admin/delivery/http"
	adminService "anoa.com/nawhoknow/internal/modules/admin/service"

	categoryHttp "anoa.com/nawhoknow/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/nawhoknow/internal/modules/category/repository"
	categoryService "anoa.com/nawhoknow/internal/modules/category/service"

	leaderboardHttp "anoa.com/nawhoknow/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/nawhoknow/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/nawhoknow/internal/modules/leaderboard/service"

	notiHttp "anoa.com/nawhoknow/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/nawhoknow/internal/modules/notification/repository"
	notifService "anoa.com/nawhoknow/internal/modules/notification/service"

	predictionHttp "anoa.com/nawhoknow/internal/modules/prediction/delivery/http"
	predictionRepo "anoa.com/nawhoknow/internal/modules/prediction/repository"
	predictionService "anoa.com/nawhoknow/internal/modules/prediction/service"

	profileHttp "anoa.com/nawhoknow/internal/modules/profile/delivery/http"
	profileService "anoa.com/nawhoknow/internal/modules/profile/service"

	rewardHttp "anoa.com/nawhoknow/internal/modules/reward/delivery/http"
	rewardRepo "anoa.com/nawhoknow/internal/modules/reward/repository"
	rewardService "anoa.com/nawhoknow/internal/modules/reward/service"

	scoringRepo "anoa.com/nawhoknow/internal/modules/scoring/repository"
	scoringService "anoa.com/nawhoknow/internal/modules/scoring/service"

	searchHttp "anoa.com/nawhoknow/internal/modules/search/delivery/http"
	searchService "anoa.com/nawhoknow/internal/modules/search/service"

	userHttp "anoa.com/nawhoknow/internal/modules/user/delivery/http"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	userService "anoa.com/nawhoknow/internal/modules/user/service"

	voteHttp "anoa.com/nawhoknow/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/nawhoknow/internal/modules/vote/repository"
	voteService "anoa.com/nawhoknow/internal/modules/vote/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *jobs.Scheduler
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	usersRepo := userRepo.NewUserRepository(db)
	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Initialize Meilisearch
	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	meiliSvc := searchService.NewMeiliSearchService(meiliClient)
	searchHandler := searchHttp.NewSearchHandler(meiliSvc)

	authSvc := userService.NewAuthService(usersRepo, meiliSvc)
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := adminService.NewAdminService(usersRepo)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	categoriesRepo := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoriesRepo)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	activitiesRepo := activityRepo.NewActivityRepository(db)
	activitySvc := activityService.NewActivityService(activitiesRepo)
	activityHandler := activityHttp.NewActivityHandler(activitySvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc)

	predictionsRepo := predictionRepo.NewRepository(db)
	votesRepo := voteRepo.NewRepository(db)
	pointsRepo := scoringRepo.NewPointsRepository(db)

	scoringSvc := scoringService.NewScoringService(pointsRepo, votesRepo, usersRepo, predictionsRepo, notificationSvc, time.Local)

	predictionSvc := predictionService.NewService(
		predictionsRepo,
		categoriesRepo,
		usersRepo,
		votesRepo,
		scoringSvc,
		activitySvc,
		notificationSvc,
		meiliSvc,
	)
	predictionHandler := predictionHttp.NewPredictionHandler(predictionSvc)

	voteSvc := voteService.NewService(
		votesRepo,
		predictionsRepo,
		usersRepo,
		pointsRepo,
		activitySvc,
		notificationSvc,
		redisClient,
	)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	leaderboardsRepo := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardsRepo, redisClient, cfg.LeaderboardCacheTTL)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	profileSvc := profileService.NewProfileService(usersRepo, pointsRepo, leaderboardSvc, imageStorage, cfg.AppBaseURL, time.Local)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	rewardsRepo := rewardRepo.NewRewardRepository(db)
	rewardSvc := rewardService.NewRewardService(rewardsRepo, usersRepo, activitySvc, notificationSvc)
	rewardHandler := rewardHttp.NewRewardHandler(rewardSvc)

	// Background jobs: the settlement sweep re-scores anything the inline
	// settlement missed, the search sync keeps Meilisearch warm.
	scheduler := jobs.NewScheduler()
	scheduler.Register(jobs.NewScoringRescanJob(scoringSvc, cfg.ScoringRescanEvery))
	scheduler.Register(jobs.NewSearchSyncJob(predictionsRepo, meiliSvc))

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/notifications/ws"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(usersRepo)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/signup", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Public reads: a token is honored when present so responses can carry
	// the viewer's own vote and rank, but none of these require one.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/predictions", predictionHandler.GetFeed)
		public.GET("/predictions/spotlight", predictionHandler.GetSpotlight)
		public.GET("/predictions/search", searchHandler.SearchPredictions)
		public.GET("/predictions/:id", predictionHandler.GetPredictionByID)
		public.GET("/predictions/:id/tallies", voteHandler.GetTallies)
		public.GET("/categories", categoryHandler.GetAllCategories)
		public.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		public.GET("/activities", activityHandler.GetRecent)
		public.GET("/profile/:username", profileHandler.GetProfileByUsername)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.POST("/categories", categoryHandler.CreateCategory)
			adminGroup.DELETE("/categories/:id", categoryHandler.DeleteCategory)
			adminGroup.GET("/predictions", predictionHandler.GetAdminFeed)
			adminGroup.GET("/predictions/search", searchHandler.SearchAllPredictions)
			adminGroup.PUT("/predictions/:id/status", predictionHandler.Moderate)
			adminGroup.PATCH("/predictions/:id/status", predictionHandler.Moderate)
			adminGroup.POST("/predictions/:id/resolve", predictionHandler.Resolve)
			adminGroup.POST("/rewards", rewardHandler.CreateReward)
		}

		// Prediction routes
		protected.POST("/predictions", predictionHandler.CreatePrediction)
		protected.GET("/predictions/me", predictionHandler.GetMyPredictions)
		protected.DELETE("/predictions/:id", predictionHandler.DeletePrediction)

		// Vote routes
		protected.POST("/predictions/:id/vote", voteHandler.CastVote)
		protected.GET("/votes/me", voteHandler.GetMyVotes)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetMyProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.GET("/profile/share", profileHandler.GetShareCard)
		protected.GET("/points_history", profileHandler.GetPointsHistory)

		// Reward routes
		protected.GET("/rewards", rewardHandler.GetCatalog)
		protected.POST("/rewards/:id/redeem", rewardHandler.Redeem)
		protected.GET("/redemptions/me", rewardHandler.GetMyRedemptions)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
	}
}

func (s *Server) Run(addr string) error {
	s.scheduler.Start()
	return s.engine.Run(addr)
}

func (s *Server) Stop() {
	s.scheduler.Stop()
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
