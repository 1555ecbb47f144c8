package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"floral_essence/internal/config"
	"floral_essence/internal/lib/logger/sl"
	appmiddleware "floral_essence/internal/middleware"
	httprouters "floral_essence/internal/transport/http"
	"floral_essence/internal/transport/http/dto/response"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	envProd = "prod"

	// adminContextKey holds the verified models.TokenMeta of a bearer request
	adminContextKey = "admin"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m          *http.ServeMux
	log        *slog.Logger
	e          *echo.Echo
	routers    *httprouters.Routers
	host       string
	port       string
	uploadsDir string
	protectAPI bool
	shutdown   time.Duration
}

func New(log *slog.Logger, cfg *config.Config, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, "If-Match"},
		ExposeHeaders: []string{"ETag"},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.HTTP.BodyLimit))
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if cfg.Env != envProd {
		if err := statsviz.Register(mux); err != nil {
			log.Info("Statsviz start with error", sl.Err(err))
		}
	}

	return &Server{
		m:          mux,
		log:        log,
		e:          e,
		routers:    routers,
		host:       cfg.HTTP.Host,
		port:       cfg.HTTP.Port,
		uploadsDir: cfg.FileStorage.BaseDir,
		protectAPI: cfg.Admin.ProtectAPI,
		shutdown:   cfg.HTTP.ShutdownTimeout,
	}
}

// ServeHTTP lets the server be mounted on a test listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", net.JoinHostPort(s.host, s.port)))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	const op = "http.Server.Stop"

	timeout := s.shutdown
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	optCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// adminOnlyMiddleware accepts an admin session or a bearer token issued by
// AuthService.Login.
func (s *Server) adminOnlyMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			_, ok := httprouters.AdminSession(c)
			return ok
		},
		ContextKey: adminContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return s.routers.AuthService.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			s.log.Warn("rejected admin request", slog.String("path", c.Path()), sl.Err(err))
			return c.JSON(http.StatusUnauthorized, response.ErrUnauthorized)
		},
	})
}

// immutableCache marks stored uploads as cacheable for a year.
func immutableCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
		return next(c)
	}
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	uploads := s.e.Group(httprouters.UploadsPath, immutableCache)
	uploads.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root: s.uploadsDir,
	}))

	api := s.e.Group("/api")
	{
		api.GET("/ping", s.routers.Ping)
		api.GET("/health", s.routers.Health)
		api.GET("/database", s.routers.GetDatabase)
		api.GET("/uploads", s.routers.ListUploads)
		api.GET("/catalog", s.routers.Catalog)
		api.GET("/catalog/:category", s.routers.CatalogCategory)

		api.POST("/login", s.routers.Login)
		api.POST("/logout", s.routers.Logout)

		var protected []echo.MiddlewareFunc
		if s.protectAPI {
			protected = append(protected, s.adminOnlyMiddleware())
		}

		admin := api.Group("", protected...)
		{
			admin.POST("/database", s.routers.SaveDatabase)
			admin.POST("/upload", s.routers.Upload)
			admin.POST("/upload-multiple", s.routers.UploadMultiple)
			admin.DELETE("/upload/:filename", s.routers.DeleteUpload)
			admin.PUT("/rename-upload/:oldFilename", s.routers.RenameUpload)
		}
	}
}
