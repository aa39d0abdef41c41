// Package httpapi serves the storefront REST API over chi.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserService is what the login endpoint needs.
type UserService interface {
	Login(ctx context.Context, companyID int64, email string, password []byte) (string, error)
}

// ProductService is what the product, catalog and image endpoints need.
type ProductService interface {
	Search(ctx context.Context, companyID int64, p services.SearchParams) (*services.SearchResult, error)
	FilterSearch(ctx context.Context, companyID int64, p services.FilterParams) ([]models.Product, error)
	Catalog(ctx context.Context, companyID int64) (models.Catalog, error)
	UpdateOrCreate(ctx context.Context, companyID int64, p *models.Product) (*models.Product, error)
	SaveImages(ctx context.Context, companyID, productID int64, files []services.UploadedImage, location string) ([]models.ProductImage, error)
	DeleteImage(ctx context.Context, companyID, imageID int64) error
}

// Options configures a Server.
type Options struct {
	Address     string
	SecretKey   string
	CORSOrigins []string
	Logger      logging.Logger
	// Registry receives the HTTP metrics; nil means a fresh registry.
	Registry *prometheus.Registry
}

type Server struct {
	address     string
	users       UserService
	products    ProductService
	logger      logging.Logger
	jwtSecret   []byte
	corsOrigins []string
	registry    *prometheus.Registry
	metrics     *metrics
}

func NewServer(us UserService, ps ProductService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	return &Server{
		address:     opts.Address,
		users:       us,
		products:    ps,
		logger:      opts.Logger.With("module", "http_server"),
		jwtSecret:   []byte(opts.SecretKey),
		corsOrigins: opts.CORSOrigins,
		registry:    opts.Registry,
		metrics:     newMetrics(opts.Registry),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, s.loggerMiddleware, middleware.Recoverer, s.metrics.middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)

			r.Post("/pos/searchProduct", s.searchProduct)
			r.Post("/pos/searchFilterProduct", s.searchFilterProduct)
			r.Get("/pos/getCategoriaUnidadesTax", s.getCatalog)
			r.Post("/productos/updateOrCreateProduct", s.updateOrCreateProduct)
			r.Post("/productos/saveImages/{id}", s.saveImages)
			r.Delete("/productos/deleteImage/{id}", s.deleteImage)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
