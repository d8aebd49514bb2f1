package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/cache"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/search"
	"messenger-service/internal/services"
	"messenger-service/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "messenger-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	store := cache.NewRedisStore(redisClient, cfg.CacheTTL)

	index, err := search.NewElasticIndex(cfg.ElasticURL)
	if err != nil {
		log.Fatalf("failed to init elasticsearch: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	hub := ws.NewHub()
	effects := services.NewDispatcher(store, publisher, hub)

	userRepo := repositories.NewUserRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	folderRepo := repositories.NewFolderRepo(database)
	joinRequestRepo := repositories.NewJoinRequestRepo(database)
	invitationRepo := repositories.NewInvitationRepo(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)

	userService := services.NewUserService(userRepo, tokens, index, effects)
	chatService := services.NewChatService(chatRepo, folderRepo, userRepo, index, store, effects)
	folderService := services.NewFolderService(folderRepo, chatRepo, store, effects)
	joinRequestService := services.NewJoinRequestService(joinRequestRepo, userRepo, chatRepo, chatService)
	invitationService := services.NewInvitationService(invitationRepo, userRepo, chatRepo, chatService)
	searchService := services.NewSearchService(index, store)

	authHandler := handlers.NewAuthHandler(userService, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, folderService, userRepo)
	folderHandler := handlers.NewFolderHandler(folderService, userRepo)
	joinRequestHandler := handlers.NewJoinRequestHandler(joinRequestService, userRepo)
	invitationHandler := handlers.NewInvitationHandler(invitationService, userRepo)
	searchHandler := handlers.NewSearchHandler(searchService, userRepo)
	eventsWS := ws.NewEventsHandler(hub, tokens.Validate)

	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go invitationService.RunSweeper(sweeperCtx, cfg.SweepInterval)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	handlers.RegisterHealthRoutes(router, database)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.GET("/me", authMiddleware, authHandler.Me)
	router.PATCH("/me/settings", authMiddleware, authHandler.UpdateSettings)

	router.POST("/chats", authMiddleware, chatHandler.CreateChat)
	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.DELETE("/chats/:chat_uuid", authMiddleware, chatHandler.DeleteChat)
	router.POST("/chats/:chat_uuid/quit", authMiddleware, chatHandler.QuitGroup)
	router.POST("/chats/:chat_uuid/members", authMiddleware, chatHandler.AddMember)
	router.POST("/chats/:chat_uuid/pin", authMiddleware, chatHandler.TogglePin)
	router.GET("/chats/:chat_uuid/join-requests", authMiddleware, joinRequestHandler.ForGroup)
	router.GET("/chats/:chat_uuid/invitations", authMiddleware, invitationHandler.ListForGroup)

	router.GET("/folders", authMiddleware, folderHandler.ListFolders)
	router.POST("/folders", authMiddleware, folderHandler.CreateFolder)
	router.PATCH("/folders/:folder_uuid", authMiddleware, folderHandler.RenameFolder)
	router.DELETE("/folders/:folder_uuid", authMiddleware, folderHandler.DeleteFolder)
	router.POST("/folders/:folder_uuid/move", authMiddleware, folderHandler.MoveFolder)
	router.GET("/folders/:folder_uuid/chats", authMiddleware, chatHandler.ListChatsInFolder)
	router.POST("/folders/:folder_uuid/chats", authMiddleware, folderHandler.AddChat)
	router.DELETE("/folders/:folder_uuid/chats/:chat_uuid", authMiddleware, folderHandler.RemoveChat)
	router.POST("/folders/:folder_uuid/chats/:chat_uuid/pin", authMiddleware, folderHandler.TogglePin)

	router.POST("/join-requests", authMiddleware, joinRequestHandler.Create)
	router.GET("/join-requests/incoming", authMiddleware, joinRequestHandler.Incoming)
	router.GET("/join-requests/outgoing", authMiddleware, joinRequestHandler.Outgoing)
	router.POST("/join-requests/:request_uuid/approve", authMiddleware, joinRequestHandler.Approve)
	router.POST("/join-requests/:request_uuid/reject", authMiddleware, joinRequestHandler.Reject)

	router.POST("/invitations", authMiddleware, invitationHandler.Create)
	router.DELETE("/invitations/:invitation_uuid", authMiddleware, invitationHandler.Delete)
	router.POST("/invitations/:invitation_uuid/use", authMiddleware, invitationHandler.Use)

	router.GET("/search", authMiddleware, searchHandler.Search)
	router.GET("/search/history", authMiddleware, searchHandler.History)

	router.GET("/ws/events", eventsWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
