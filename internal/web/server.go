// Package web serves the study companion over HTTP: a server rendered page
// driven by form posts and a JSON API with the same events.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thywilljoshua/study-companion/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	Dev            bool
	AllowedOrigins []string
	MaxUploadBytes int64
	LLMTimeout     time.Duration
	// Model is shown in the page footer.
	Model string
}

type Server struct {
	router *gin.Engine
	mgr    *session.Manager
	log    *zap.Logger
	opts   Options
}

func New(mgr *session.Manager, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 120 * time.Second
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors.New(corsConfig(opts)))
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	s := &Server{router: router, mgr: mgr, log: log, opts: opts}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	page := s.router.Group("/", sessionCookie())
	page.GET("", s.index)
	page.POST("document", s.postDocument)
	page.POST("level", s.postLevel)
	page.POST("summary", s.postSummary)
	page.POST("chat", s.postChat)
	page.POST("chat/clear", s.postClearChat)
	page.POST("reset", s.postReset)
	page.GET("export/:format", s.pageExport)

	api := s.router.Group("/api", sessionCookie())
	api.GET("/session", s.apiSession)
	api.POST("/document", s.apiUpload)
	api.PUT("/level", s.apiLevel)
	api.POST("/summary", s.apiSummarize)
	api.POST("/chat", s.apiAsk)
	api.DELETE("/chat", s.apiClearChat)
	api.DELETE("/session", s.apiReset)
	api.GET("/export/:format", s.apiExport)
}

func (s *Server) Handler() http.Handler { return s.router }

// generationContext detaches a model call from the client connection and
// bounds it by the configured timeout.
func (s *Server) generationContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.opts.LLMTimeout)
}

func corsConfig(opts Options) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 && !opts.Dev {
		allowed := map[string]bool{}
		for _, o := range opts.AllowedOrigins {
			allowed[o] = true
		}
		cfg.AllowOriginFunc = func(origin string) bool { return allowed[origin] }
	} else {
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cfg
}
