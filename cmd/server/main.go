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

	"faqbot-go/internal/config"
	"faqbot-go/internal/handler"
	"faqbot-go/internal/middleware"
	"faqbot-go/internal/repository"
	"faqbot-go/internal/service"
	"faqbot-go/pkg/database"
	"faqbot-go/pkg/embedding"
	"faqbot-go/pkg/es"
	"faqbot-go/pkg/llm"
	"faqbot-go/pkg/log"
	"faqbot-go/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化外部依赖：Redis（会话存储）、Elasticsearch（相似度索引）、MinIO（可选静态资源源站）
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	if cfg.MinIO.Enabled {
		storage.InitMinIO(cfg.MinIO)
	}

	// 4. 初始化 Repository
	sessionRepo := repository.NewSessionRepository(database.RDB, time.Duration(cfg.Session.TTLSeconds)*time.Second)

	// 5. 初始化 Service (依赖注入)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	retrievalService := service.NewRetrievalService(embeddingClient, es.ESClient, cfg.Elasticsearch.IndexName)
	chatService := service.NewChatService(retrievalService, llmClient, sessionRepo, cfg.LLM.Prompt)
	seedService := service.NewSeedService(embeddingClient, es.ESClient, cfg.Elasticsearch.IndexName, service.DefaultFAQEntries)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 宽松 CORS：允许任意来源，方法 GET/POST/OPTIONS，头仅 Content-Type
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
	}))

	// 路由不匹配方法时返回 405 而不是 404
	r.HandleMethodNotAllowed = true

	// 7. 注册路由
	chatHandler := handler.NewChatHandler(chatService, cfg.Session)
	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.GET("/history", chatHandler.History)
		api.POST("/seed", handler.NewSeedHandler(seedService).Seed)
		api.GET("/health", handler.Health)
	}

	// 其余路径全部交给静态资源响应器
	r.NoRoute(handler.NewStaticHandler(cfg.Static, cfg.MinIO).Serve)

	// 8. 启动 HTTP 服务器并实现优雅停机
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
