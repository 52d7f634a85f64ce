package server

import (
	"strings"
	"time"

	"github.com/hsik0225/dropthecode/internal/config"
	"github.com/hsik0225/dropthecode/internal/middleware"

	authHttp "github.com/hsik0225/dropthecode/internal/modules/auth/delivery/http"
	authService "github.com/hsik0225/dropthecode/internal/modules/auth/service"

	catalogHttp "github.com/hsik0225/dropthecode/internal/modules/catalog/delivery/http"
	catalogRepo "github.com/hsik0225/dropthecode/internal/modules/catalog/repository"
	catalogService "github.com/hsik0225/dropthecode/internal/modules/catalog/service"

	memberHttp "github.com/hsik0225/dropthecode/internal/modules/member/delivery/http"
	memberRepo "github.com/hsik0225/dropthecode/internal/modules/member/repository"
	memberService "github.com/hsik0225/dropthecode/internal/modules/member/service"

	notiHttp "github.com/hsik0225/dropthecode/internal/modules/notification/delivery/http"
	notifRepo "github.com/hsik0225/dropthecode/internal/modules/notification/repository"
	notifService "github.com/hsik0225/dropthecode/internal/modules/notification/service"

	reviewHttp "github.com/hsik0225/dropthecode/internal/modules/review/delivery/http"
	reviewRepo "github.com/hsik0225/dropthecode/internal/modules/review/repository"
	reviewService "github.com/hsik0225/dropthecode/internal/modules/review/service"

	searchService "github.com/hsik0225/dropthecode/internal/modules/search/service"

	teacherHttp "github.com/hsik0225/dropthecode/internal/modules/teacher/delivery/http"
	teacherRepo "github.com/hsik0225/dropthecode/internal/modules/teacher/repository"
	teacherService "github.com/hsik0225/dropthecode/internal/modules/teacher/service"

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
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, meiliClient meilisearch.ServiceManager) *Server {
	members := memberRepo.NewMemberRepository(db)
	catalogs := catalogRepo.NewCatalogRepository(db)
	teachers := teacherRepo.NewTeacherRepository(db)
	reviews := reviewRepo.NewReviewRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)

	var indexer teacherService.ProfileIndexer
	if meiliClient != nil {
		indexer = searchService.NewMeiliSearchService(meiliClient)
	}

	catalogSvc := catalogService.NewCatalogService(catalogs)
	catalogHandler := catalogHttp.NewCatalogHandler(catalogSvc)

	authSvc := authService.NewAuthService(members, cfg)
	authHandler := authHttp.NewAuthHandler(authSvc)

	memberSvc := memberService.NewMemberService(members)
	memberHandler := memberHttp.NewMemberHandler(memberSvc)

	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	teacherSvc := teacherService.NewTeacherService(teachers, members, catalogSvc, indexer, cfg.SkillMatchAll)
	teacherHandler := teacherHttp.NewTeacherHandler(teacherSvc)

	reviewSvc := reviewService.NewReviewService(reviews, members, teacherSvc, notificationSvc)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.GET("/github/login", authHandler.GithubLogin)
		auth.GET("/github/callback", authHandler.GithubCallback)
	}

	api.GET("/languages", catalogHandler.GetAllLanguages)
	api.GET("/teachers", teacherHandler.GetTeachers)
	api.GET("/teachers/search", teacherHandler.SearchTeachers)
	api.GET("/teachers/:id", teacherHandler.GetTeacher)
	api.GET("/reviews/student/:id", reviewHandler.GetStudentReviews)
	api.GET("/reviews/teacher/:id", reviewHandler.GetTeacherReviews)
	api.GET("/reviews/:id", reviewHandler.GetReview)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/members/me", memberHandler.GetMe)
		protected.DELETE("/members/me", memberHandler.DeleteMe)

		protected.POST("/teachers", teacherHandler.Register)
		protected.PUT("/teachers/me", teacherHandler.UpdateMe)
		protected.DELETE("/teachers/me", teacherHandler.DeleteMe)

		protected.POST("/reviews", reviewHandler.CreateReview)
		protected.PATCH("/reviews/:id", reviewHandler.EditReview)
		protected.DELETE("/reviews/:id", reviewHandler.CancelReview)
		protected.PATCH("/reviews/:id/accept", reviewHandler.AcceptReview)
		protected.PATCH("/reviews/:id/deny", reviewHandler.DenyReview)
		protected.PATCH("/reviews/:id/complete", reviewHandler.CompleteReview)
		protected.PATCH("/reviews/:id/finish", reviewHandler.FinishReview)

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
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
