package main

import (
	"context"
	"fmt"
	"log"

	"docmeta/config"
	"docmeta/database"
	"docmeta/handlers"
	"docmeta/locks"
	"docmeta/logger"
	"docmeta/middleware"
	"docmeta/models"
	"docmeta/repositories"
	"docmeta/search"
	"docmeta/services"
	"docmeta/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
)

func main() {
	log.Println("starting docmeta service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}

	database.DB.AutoMigrate(
		&models.Folder{},
		&models.TreeEdge{},
		&models.File{},
		&models.IdentityMapping{},
		&models.FileOrder{},
		&models.Tag{},
		&models.TagLink{},
		&models.BunchObject{},
		&models.QuotaUsage{},
	)
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	blobs, err := buildBlobStore(cfg)
	if err != nil {
		log.Fatalf("init blob store failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(database.DB).BuildContainer()
	serviceContainer := services.NewContainer(
		repoContainer,
		blobs,
		locks.NewRedisLocker(database.RedisClient),
		search.Noop{},
		services.NewProviderSelector(),
	)
	handlers.SetServices(serviceContainer)

	r := gin.Default()
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func buildBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.Storage.Backend == "s3" {
		return storage.NewS3(context.Background(), cfg.Storage.S3)
	}
	return storage.NewDisk(afero.NewOsFs(), cfg.Storage.BasePath), nil
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/roots/my", handlers.GetMyFolder)
		protected.GET("/roots/trash", handlers.GetTrashFolder)
		protected.GET("/folders/:id", handlers.GetFolder)
		protected.POST("/folders", handlers.CreateFolder)
		protected.PUT("/folders/:id", handlers.RenameFolder)
		protected.PUT("/folders/:id/move", handlers.MoveFolder)
		protected.DELETE("/folders/:id", handlers.DeleteFolder)
		protected.GET("/folders/:id/ancestors", handlers.GetFolderAncestors)
		protected.GET("/folders/:id/descendants", handlers.GetFolderDescendants)
		protected.GET("/folders/:id/quota", handlers.GetFolderQuota)
		protected.POST("/folders/:id/recount", handlers.RecountFolders)

		protected.GET("/files/:id", handlers.GetFile)
		protected.GET("/files/:id/versions", handlers.ListFileVersions)
		protected.GET("/files/:id/download", handlers.DownloadFile)
		protected.POST("/files/upload", handlers.UploadFile)
		protected.DELETE("/files/:id/versions/:version", handlers.DeleteFileVersion)
		protected.POST("/files/:id/versions/:version/complete", handlers.CompleteFileVersion)
		protected.POST("/files/:id/versions/:version/continue", handlers.ContinueFileVersion)
		protected.POST("/files/:id/versions/:version/thumbnail", handlers.GenerateThumbnail)
		protected.PUT("/files/:id/move", handlers.MoveFile)
		protected.POST("/files/:id/copy", handlers.CopyFile)
		protected.DELETE("/files/:id", handlers.DeleteFile)

		protected.POST("/transfer/move", handlers.MoveEntry)
		protected.POST("/transfer/copy", handlers.CopyEntry)
	}
}
