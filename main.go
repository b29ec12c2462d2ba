package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"debate-relay/internal/config"
	"debate-relay/internal/db"
	"debate-relay/internal/genai"
	"debate-relay/internal/handlers"
	"debate-relay/internal/middleware"
	"debate-relay/internal/observability"
	"debate-relay/internal/rabbitmq"
	"debate-relay/internal/relay"
	"debate-relay/internal/repositories"
	"debate-relay/internal/telemetry"
	"debate-relay/internal/ws"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTEL)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.relay", "debate-relay", cfg.Environment)

	connectionRepo := repositories.NewConnectionRepo(database)
	membershipRepo := repositories.NewMembershipRepo(database)
	flowchartRepo := repositories.NewFlowchartRepo(database)
	commentRepo := repositories.NewCommentRepo(database)

	hub := ws.NewHub()
	router := relay.NewRouter(membershipRepo, connectionRepo, hub)
	session := relay.NewSession(connectionRepo, membershipRepo, flowchartRepo, commentRepo, router, relay.Config{
		NotifyLeaver: cfg.NotifyLeaver,
	})

	relayWS := ws.NewRelayHandler(hub, session)

	genClient := genai.NewClient(cfg.GenAIBaseURL)
	assistHandler := handlers.NewAssistHandler(genClient, auditEmitter)

	engine := gin.Default()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("debate-relay"))
	engine.Use(observability.HTTPMetricsMiddleware())

	limiter := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)

	engine.GET("/ws", relayWS.Handle)

	assist := engine.Group("/assist", limiter.Handler())
	assist.POST("/argument", assistHandler.GenerateArgument)
	assist.POST("/evidence", assistHandler.AnalyzeEvidence)
	assist.POST("/counter", assistHandler.GenerateCounter)
	assist.POST("/chat", assistHandler.Chat)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(engine, auditEmitter, cfg.DebugRoutes)

	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
