// Package router assembles the gin engine serving the bandhub API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bandhub/internal/docs" // swagger spec registration
	"bandhub/internal/handlers"
	"bandhub/internal/metrics"
	"bandhub/internal/middleware"
	"bandhub/internal/services"
)

// Per-IP limits on the unauthenticated write endpoints.
const (
	authRequestsPerMinute   = 10
	publicRequestsPerMinute = 5
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Sessions       *middleware.SessionManager
	Users          services.UserServicer
	PasswordResets services.PasswordResetServicer
	Transactions   services.TransactionServicer
	Files          services.FileServicer
	MailingList    services.MailingListServicer
	Campaigns      services.CampaignServicer
	Contact        services.ContactServicer
	Audit          services.AuditServicer

	CORSOrigin     string
	MetricsAPIKey  string
	MaxUploadBytes int64
}

// New builds the engine with every API route registered.
func New(d Deps) *gin.Engine {
	metrics.MustRegister()

	authHandler := handlers.NewAuthHandler(d.Users, d.Sessions)
	passwordHandler := handlers.NewPasswordHandler(d.PasswordResets)
	pendingUserHandler := handlers.NewPendingUserHandler(d.Users, d.Audit)
	userHandler := handlers.NewUserHandler(d.Users, d.Audit)
	transactionHandler := handlers.NewTransactionHandler(d.Transactions, d.Audit)
	fileHandler := handlers.NewFileHandler(d.Files, d.Audit, d.MaxUploadBytes)
	mailingListHandler := handlers.NewMailingListHandler(d.MailingList)
	campaignHandler := handlers.NewCampaignHandler(d.Campaigns, d.Audit)
	contactHandler := handlers.NewContactHandler(d.Contact)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(middleware.MethodNotAllowed())
	router.MaxMultipartMemory = 8 << 20

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(d.CORSOrigin))

	// Operational endpoints
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.APIKeyAuth(d.MetricsAPIKey), gin.WrapH(promhttp.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authLimit := middleware.RateLimit(authRequestsPerMinute, time.Minute)
	publicLimit := middleware.RateLimit(publicRequestsPerMinute, time.Minute)

	api := router.Group("/api")
	api.Use(d.Sessions.LoadSession())

	// Public routes
	api.POST("/signup", authLimit, authHandler.Signup)
	api.POST("/check-user-status", authLimit, authHandler.CheckUserStatus)
	api.POST("/forgot-password", publicLimit, passwordHandler.ForgotPassword)
	api.POST("/reset-password", authLimit, passwordHandler.ResetPassword)
	api.POST("/contact", publicLimit, contactHandler.SendMessage)

	auth := api.Group("/auth")
	auth.POST("/login", authLimit, authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", middleware.RequireSession(), authHandler.Session)

	// Admin reads on otherwise public resources answer 403 even without a session.
	mailingList := api.Group("/mailing-list")
	mailingList.GET("", middleware.RequireAdmin(), mailingListHandler.ListSubscribers)
	mailingList.POST("", publicLimit, mailingListHandler.Subscribe)
	mailingList.DELETE("", mailingListHandler.Unsubscribe)

	// Signed-in members
	protected := api.Group("")
	protected.Use(middleware.RequireSession())

	users := protected.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.DELETE("", userHandler.DeleteUser)
	users.POST("", userHandler.UserAction)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.DELETE("", transactionHandler.DeleteTransaction)
	transactions.GET("/categories", transactionHandler.ListCategories)

	files := protected.Group("/files")
	files.GET("", fileHandler.ListFiles)
	files.POST("", fileHandler.UploadFile)
	files.DELETE("", fileHandler.DeleteFile)
	files.GET("/:id", fileHandler.GetFile)

	// Admins
	pendingUsers := protected.Group("/pending-users")
	pendingUsers.Use(middleware.RequireAdmin())
	pendingUsers.GET("", pendingUserHandler.ListPendingUsers)
	pendingUsers.POST("", pendingUserHandler.DecidePendingUser)

	campaigns := api.Group("/email-campaigns")
	campaigns.Use(middleware.RequireAdmin())
	campaigns.GET("", campaignHandler.ListCampaigns)
	campaigns.POST("", campaignHandler.CreateOrSendCampaign)
	campaigns.PUT("", campaignHandler.UpdateCampaign)
	campaigns.DELETE("", campaignHandler.DeleteCampaign)

	return router
}
