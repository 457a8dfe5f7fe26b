package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/config"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/services"
)

// Router bundles the services behind the REST surface.
type Router struct {
	users    *services.UserService
	quota    *services.QuotaService
	files    *services.FileService
	folders  *services.FolderService
	shares   *services.ShareService
	comments *services.CommentService
	logger   logging.Logger
	cfg      *config.Config
}

func NewRouter(users *services.UserService, quota *services.QuotaService,
	files *services.FileService, folders *services.FolderService,
	shares *services.ShareService, comments *services.CommentService,
	logger logging.Logger, cfg *config.Config) *Router {
	return &Router{
		users:    users,
		quota:    quota,
		files:    files,
		folders:  folders,
		shares:   shares,
		comments: comments,
		logger:   logger.With("component", "httpapi"),
		cfg:      cfg,
	}
}

// Engine assembles the gin engine with CORS, rate limiting, and all routes.
func (rt *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if rt.cfg.FrontendURL != "" {
		corsCfg.AllowOrigins = []string{rt.cfg.FrontendURL}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))
	engine.Use(RateLimit(rate.Limit(25), 50))

	secret := []byte(rt.cfg.SecretKey)
	api := engine.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", rt.handleSignUp)
		authGroup.POST("/login", rt.handleLogin)
		authGroup.POST("/logout", rt.handleLogout)
		authGroup.POST("/refresh", rt.handleRefresh)
		authGroup.GET("/verify-email/:token", rt.handleVerifyEmail)
		authGroup.POST("/forgot-password", rt.handleForgotPassword)
		authGroup.POST("/reset-password", rt.handleResetPassword)
		authGroup.GET("/me", AuthRequired(secret), rt.handleMe)
	}

	filesGroup := api.Group("/files", AuthRequired(secret))
	{
		filesGroup.POST("", rt.handleUpload)
		filesGroup.GET("", rt.handleListFiles)
		filesGroup.GET("/:id", rt.handleGetFile)
		filesGroup.GET("/:id/content", rt.handleFileContent)
		filesGroup.PATCH("/:id", rt.handleRenameFile)
		filesGroup.PUT("/:id/move", rt.handleMoveFile)
		filesGroup.DELETE("/:id", rt.handleDeleteFile)
		filesGroup.POST("/:id/comments", rt.handleAddComment)
		filesGroup.GET("/:id/comments", rt.handleListComments)
	}

	foldersGroup := api.Group("/folders", AuthRequired(secret))
	{
		foldersGroup.POST("", rt.handleCreateFolder)
		foldersGroup.GET("", rt.handleListFolders)
		foldersGroup.GET("/:id", rt.handleGetFolder)
		foldersGroup.PATCH("/:id", rt.handleUpdateFolder)
		foldersGroup.PUT("/:id/move", rt.handleMoveFolder)
		foldersGroup.DELETE("/:id", rt.handleDeleteFolder)
	}

	shareGroup := api.Group("/share")
	{
		shareGroup.POST("/folder", AuthRequired(secret), rt.handleShareFolder)
		shareGroup.POST("/folder/:id/link", AuthRequired(secret), rt.handleCreatePublicLink)
		shareGroup.GET("/folder/:id/members", AuthRequired(secret), rt.handleShareMembers)
		shareGroup.PATCH("/:id", AuthRequired(secret), rt.handleUpdateShare)
		shareGroup.DELETE("/:id", AuthRequired(secret), rt.handleRemoveShare)
		shareGroup.GET("/shared-with-me", AuthRequired(secret), rt.handleSharedWithMe)

		// Public link reads need no authentication.
		shareGroup.GET("/public/:token", rt.handlePublicFolder)
		shareGroup.GET("/public/:token/files/:fileId/content", rt.handlePublicFileContent)
	}

	commentsGroup := api.Group("/comments", AuthRequired(secret))
	{
		commentsGroup.PATCH("/:id", rt.handleUpdateComment)
		commentsGroup.DELETE("/:id", rt.handleDeleteComment)
	}

	storageGroup := api.Group("/storage", AuthRequired(secret))
	{
		storageGroup.GET("/usage", rt.handleStorageUsage)
		storageGroup.POST("/reconcile", rt.handleStorageReconcile)
	}

	return engine
}
