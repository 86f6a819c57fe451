// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"art-gallery-go/internal/config"
	"art-gallery-go/internal/handler"
	"art-gallery-go/internal/middleware"
	"art-gallery-go/internal/model"
	"art-gallery-go/internal/repository"
	"art-gallery-go/internal/service"
	istorage "art-gallery-go/internal/storage"
	"art-gallery-go/pkg/database"
	"art-gallery-go/pkg/es"
	"art-gallery-go/pkg/kafka"
	"art-gallery-go/pkg/log"
	"art-gallery-go/pkg/storage"
	"art-gallery-go/pkg/tasks"
	"art-gallery-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
)

// kafkaCleanupPublisher 把包级的 Kafka 生产者适配为业务层的 CleanupPublisher 接口。
type kafkaCleanupPublisher struct{}

func (kafkaCleanupPublisher) PublishCleanupTask(task tasks.FileCleanupTask) error {
	return kafka.PublishCleanupTask(task)
}

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与存储后端
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.DB.AutoMigrate(&model.User{}, &model.Gallery{}, &model.Artwork{}, &model.StorageFile{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	var minioClient *minio.Client
	if cfg.Storage.Backend == "minio" {
		storage.InitMinIO(cfg.MinIO)
		minioClient = storage.MinioClient
	}

	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepository := repository.NewUserRepository(database.DB)
	galleryRepository := repository.NewGalleryRepository(database.DB)
	artworkRepository := repository.NewArtworkRepository(database.DB, database.RDB)
	fileRepository := repository.NewFileRepository(database.DB)

	// 5. 初始化存储后端与 Service (依赖注入)
	backend := istorage.NewBackend(cfg.Storage, cfg.MinIO, minioClient, fileRepository)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	locks := service.NewGalleryLocks()

	userService := service.NewUserService(userRepository, jwtManager)
	searchService := service.NewSearchService(cfg.Elasticsearch.IndexName)
	artworkService := service.NewArtworkService(galleryRepository, artworkRepository, backend, locks, searchService)
	galleryService := service.NewGalleryService(userRepository, galleryRepository, artworkRepository, backend, locks, searchService, kafkaCleanupPublisher{}, cfg.Storage.DeleteWorkers)

	// 6. 启动后台 Kafka 消费者，重试级联删除时遗留的文件
	go kafka.StartCleanupConsumer(cfg.Kafka, backend)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	userHandler := handler.NewUserHandler(userService)
	galleryHandler := handler.NewGalleryHandler(galleryService)
	artworkHandler := handler.NewArtworkHandler(artworkService, searchService)
	storageHandler := handler.NewStorageHandler(backend, galleryService)
	authRequired := middleware.AuthMiddleware(jwtManager, userService)

	apiV1 := r.Group("/api/v1")
	{
		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(authRequired)
			{
				authed.GET("/me", userHandler.GetProfile)
			}
		}

		galleries := apiV1.Group("/galleries")
		{
			// 公开访问
			galleries.GET("", galleryHandler.ListGalleries)
			galleries.GET("/:id", galleryHandler.GetGallery)

			// 需要认证
			authed := galleries.Group("/")
			authed.Use(authRequired)
			{
				authed.POST("", galleryHandler.CreateGallery)
				authed.PUT("/:id", galleryHandler.UpdateGallery)
				authed.DELETE("/:id", galleryHandler.DeleteGallery)

				// 作品与文件的写操作都挂在所属画廊下
				authed.POST("/:id/artworks", artworkHandler.AddArtwork)
				authed.POST("/:id/files", storageHandler.UploadFile)
				authed.DELETE("/:id/files/:fileName", storageHandler.DeleteFile)
				authed.DELETE("/:id/files", storageHandler.DeleteGalleryFolder)
			}
		}

		artworks := apiV1.Group("/artworks")
		{
			// 公开访问
			artworks.GET("/search", artworkHandler.SearchArtworks)
			artworks.GET("/:id", artworkHandler.GetArtwork)
			// 点赞去重优先用登录身份，匿名访客退化为客户端 IP
			artworks.POST("/:id/like", middleware.OptionalAuthMiddleware(jwtManager), artworkHandler.LikeArtwork)
			artworks.POST("/:id/view", artworkHandler.ViewArtwork)

			// 需要认证
			authed := artworks.Group("/")
			authed.Use(authRequired)
			{
				authed.DELETE("/:id", artworkHandler.RemoveArtwork)
			}
		}

		storageGroup := apiV1.Group("/storage")
		storageGroup.Use(authRequired)
		{
			storageGroup.GET("/stats", storageHandler.GetStorageStats)
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
