// main.go
package main

import (
	"log"

	"github.com/drewmudry/vibecast-api/drafts"
	"github.com/drewmudry/vibecast-api/internal/config"
	"github.com/drewmudry/vibecast-api/internal/platform"
	"github.com/drewmudry/vibecast-api/processing"
	"github.com/drewmudry/vibecast-api/runs"
	"github.com/drewmudry/vibecast-api/videos"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	Config *config.Config
	Runs   *runs.Store
	Router *gin.Engine

	drafts *processing.DraftGenerator
	videos *videos.Handler
}

func NewServer(cfg *config.Config) (*Server, error) {
	db, err := platform.NewDBConnection(cfg.Runs)
	if err != nil {
		return nil, err
	}
	rdb, err := platform.NewRedisClient(cfg.Runs)
	if err != nil {
		return nil, err
	}

	store := runs.NewStore(db, rdb, cfg.Runs.CacheTTL)
	if err := store.Migrate(); err != nil {
		return nil, err
	}

	httpClient := platform.NewHTTPClient(cfg)
	falClient := platform.NewFalClient(cfg, httpClient)

	var draftProvider processing.DraftProvider
	if cfg.DraftsEnabled() {
		draftProvider = &processing.FalDraftProvider{Client: falClient}
	} else {
		log.Println("FAL credentials or FAL_PODCAST_MODEL missing, drafts will be mocked")
	}
	generator := processing.NewDraftGenerator(draftProvider, cfg.Fal.PodcastModel)

	videoPipeline := processing.NewVideoPipeline(processing.NewVideoStages(cfg, falClient, httpClient))

	router := gin.Default()
	router.Use(requestID())

	// CORS for the marketing site
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		Config: cfg,
		Runs:   store,
		Router: router,
		drafts: generator,
		videos: videos.NewHandler(videoPipeline, store),
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "healthy"}
		code := 200
		for name, err := range s.Runs.Ping(c.Request.Context()) {
			if err != nil {
				status[name] = err.Error()
				status["status"] = "unhealthy"
				code = 500
				continue
			}
			status[name] = "connected"
		}
		c.JSON(code, status)
	})

	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "VibeCast API v1"})
	})

	draftHandler := drafts.NewHandler(s.drafts)

	api := s.Router.Group("/api")
	{
		api.POST("/generate", draftHandler.GenerateDraft)
		api.POST("/video-generation", s.videos.CreateVideo)
		api.GET("/video-generation/:runId", s.videos.GetVideo)
	}
}

// requestID tags every request with an X-Request-ID, keeping the caller's if sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) Run() error {
	log.Printf("🚀 Server starting on port %s", s.Config.Port)
	return s.Router.Run(":" + s.Config.Port)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
