package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/avoronov/todovault/internal/client/api"
	"github.com/avoronov/todovault/internal/client/cache"
	"github.com/avoronov/todovault/internal/client/config"
	"github.com/avoronov/todovault/internal/common"
	"github.com/avoronov/todovault/internal/dbx"

	_ "modernc.org/sqlite"
)

// Cache keys used by the CLI. The session token carries a TTL matching
// the server-side token validity; user name and theme never expire.
const (
	cacheKeyToken    = "session_token"
	cacheKeyUserName = "session_user"
	cacheKeyTheme    = "theme"

	sessionTokenTTL = 7 * 24 * time.Hour
)

type App struct {
	config   *config.Config
	api      *api.Client
	cache    *cache.Store
	db       *sql.DB
	userName string
	reader   *bufio.Reader

	// lastList maps the ordinals printed by the last "list" command to
	// todo identifiers, so commands can say "done 2" instead of a UUID.
	lastList []api.Todo
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	store, db, err := cache.Open(ctx, cfg.CacheFile)
	if err != nil {
		return nil, err
	}

	a := &App{
		config: cfg,
		api:    api.New(cfg.ServerURL, cfg.RequestTimeout),
		cache:  store,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
	}

	a.restoreSession(ctx)
	return a, nil
}

// restoreSession picks a previously cached token up so the user does not
// have to log in on every start. A token the server no longer accepts is
// dropped from the cache.
func (a *App) restoreSession(ctx context.Context) {
	token, ok, err := a.cache.Get(ctx, cacheKeyToken)
	if err != nil || !ok {
		return
	}
	a.api.SetToken(token)

	u, err := a.api.Me(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidToken) || errors.Is(err, common.ErrorNotFound) {
			a.clearSession(ctx)
		} else {
			// server unreachable; keep the token and report who we were
			if name, ok, _ := a.cache.Get(ctx, cacheKeyUserName); ok {
				a.userName = name
			}
		}
		return
	}
	a.userName = u.Name
}

// saveSession persists the token and user name in one transaction, so a
// cached token is never missing its user record.
func (a *App) saveSession(ctx context.Context, token, name string) {
	a.api.SetToken(token)
	a.userName = name
	_ = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		c := cache.New(tx)
		if err := c.Set(ctx, cacheKeyToken, token, sessionTokenTTL); err != nil {
			return err
		}
		return c.Set(ctx, cacheKeyUserName, name, 0)
	})
}

func (a *App) clearSession(ctx context.Context) {
	a.api.SetToken("")
	a.userName = ""
	a.lastList = nil
	_ = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		c := cache.New(tx)
		if err := c.Remove(ctx, cacheKeyToken); err != nil {
			return err
		}
		return c.Remove(ctx, cacheKeyUserName)
	})
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

// checkSession drops the local session when the server rejected the
// token, so the next prompt asks the user to log in again.
func (a *App) checkSession(ctx context.Context, err error) {
	if errors.Is(err, common.ErrorInvalidToken) {
		printlnFn("Session expired, please log in again")
		a.clearSession(ctx)
	}
}

func (a *App) status() string {
	if a.userName != "" {
		return a.userName
	}
	return "not logged in"
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	printlnFn("todovault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}
