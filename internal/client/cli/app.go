package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/config"
	"github.com/dmitrijs2005/gophstore/internal/client/form"
	"github.com/dmitrijs2005/gophstore/internal/client/images"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/notify"
	"github.com/dmitrijs2005/gophstore/internal/client/pagination"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophstore/internal/client/search"
	"github.com/dmitrijs2005/gophstore/internal/client/services"
	"github.com/dmitrijs2005/gophstore/internal/client/session"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

// listKind names the product list "more" continues.
type listKind string

const (
	listProducts listKind = "products"
	listPOS      listKind = "pos"
)

// editor is the open product form.
type editor struct {
	form    *form.ProductForm
	tracker *images.Tracker
	images  []models.ProductImage
}

// lockedWriter serializes output from the REPL and the debounce timer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	out      io.Writer
	reader   *bufio.Reader
	db       *sql.DB
	trace    *client.TraceLog
	session  *session.Session
	notifier *notify.Notifier

	authService      services.AuthService
	productService   *services.ProductService
	characterService *services.CharacterService

	mu          sync.Mutex
	active      listKind
	productList *pagination.Controller[models.Product, search.Query]
	debouncer   *search.Debouncer
	posList     *pagination.Controller[models.Product, string]
	charList    *pagination.Controller[models.Character, struct{}]
	catalog     *models.Catalog
	editor      *editor
}

// NewApp wires storage, transport and services from c, talking to the
// terminal.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	return newApp(ctx, c, logger, os.Stdout, os.Stdin)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, out io.Writer, in io.Reader) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	sess := session.New(metadata.NewSQLiteRepository(db), logger)
	if err := sess.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	trace := client.NewTraceLog(client.DefaultTraceCapacity)
	gw, err := client.NewGateway(client.GatewayOptions{
		BaseURL:   c.BaseURL,
		Timeout:   c.RequestTimeout,
		RateLimit: c.RateLimit,
		Tokens:    sess,
		Trace:     trace,
		Logger:    logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// The character list is a third-party API: no bearer token.
	charGw, err := client.NewGateway(client.GatewayOptions{
		BaseURL: c.CharactersURL,
		Timeout: c.RequestTimeout,
		Trace:   trace,
		Logger:  logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	api := client.NewHTTPClient(gw)

	w := &lockedWriter{w: out}
	a := &App{
		config:   c,
		logger:   logger,
		out:      w,
		reader:   bufio.NewReader(in),
		db:       db,
		trace:    trace,
		session:  sess,
		notifier: notify.NewNotifier(w, logger),
	}
	a.authService = services.NewAuthService(api, sess, logger)
	a.productService = services.NewProductService(api, services.ProductOptions{
		PerPage:      c.PerPage,
		SaveLocation: c.SaveLocation,
		Logger:       logger,
	})
	a.characterService = services.NewCharacterService(client.NewCharacterClient(charGw, c.CharactersURL))
	a.notifier.UseTheme(func() bool { return sess.Config().DarkMode })
	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close stops timers, detaches lists and closes the database.
func (a *App) Close() {
	a.mu.Lock()
	if a.debouncer != nil {
		a.debouncer.Stop()
	}
	if a.productList != nil {
		a.productList.Close()
	}
	if a.posList != nil {
		a.posList.Close()
	}
	if a.charList != nil {
		a.charList.Close()
	}
	a.mu.Unlock()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.Authenticated()
}

// fail reports err and drops the token when the backend rejected it.
func (a *App) fail(ctx context.Context, action string, err error) {
	if errors.Is(err, client.ErrUnauthorized) && a.session != nil {
		a.session.ClearAccessToken()
	}
	a.notifier.Failure(ctx, action, err)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
