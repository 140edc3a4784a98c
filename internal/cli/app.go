package cli

import (
	"context"
	"net/http"

	"github.com/cccteam/fxadmin"
	"github.com/cccteam/fxadmin/azuread"
	"github.com/cccteam/fxadmin/config"
	"github.com/cccteam/fxadmin/guard"
	"github.com/cccteam/fxadmin/ratesapi"
	"github.com/cccteam/fxadmin/tokencache"
	"github.com/cccteam/fxadmin/transport"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
)

// App holds the wired application components shared by all commands.
type App struct {
	configPath string

	cfg     *config.Config
	session *fxadmin.Session
	guard   *guard.Guard
	api     *ratesapi.Client
}

// init wires the session, guard and API client from configuration. It also
// settles any login that finished in redirect mode before this run.
func (a *App) init(ctx context.Context) error {
	cfg, err := config.Load(ctx, a.configPath)
	if err != nil {
		return errors.Wrap(err, "config.Load()")
	}
	a.cfg = cfg

	cache, err := a.newTokenCache()
	if err != nil {
		return err
	}

	bridge := azuread.New(cache, cfg.Azure.Authority, cfg.Azure.ClientID, cfg.Azure.ClientSecret, cfg.Azure.RedirectURI, cfg.Azure.Scopes)

	a.session = fxadmin.New(bridge,
		fxadmin.WithDefaultScopes(cfg.Azure.Scopes),
		fxadmin.WithPostLogoutRedirectURI(cfg.Azure.PostLogoutRedirectURI),
	)
	if _, err := a.session.CompleteRedirectFlow(ctx); err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "fxadmin.Session.CompleteRedirectFlow()"))
	}

	a.guard = guard.New(a.session)

	client := &http.Client{
		Transport: transport.New(a.session, transport.WithScopes(cfg.Azure.Scopes)),
	}
	a.api = ratesapi.New(cfg.API.URL,
		ratesapi.WithHTTPClient(client),
		ratesapi.WithFunctionKey(cfg.API.FunctionKey),
	)

	return nil
}

func (a *App) newTokenCache() (tokencache.Cache, error) {
	if a.cfg.Cache.Path == "" {
		return tokencache.NewMemoryCache(), nil
	}

	cache, err := tokencache.NewFileCache(a.cfg.Cache.Path, a.cfg.Cache.Key)
	if err != nil {
		return nil, errors.Wrap(err, "tokencache.NewFileCache()")
	}

	return cache, nil
}

func (a *App) close() {
	if a.session != nil {
		a.session.Close()
	}
}

// requireEdit denies data modification for read-only users.
func (a *App) requireEdit() error {
	if !a.session.CanEdit() {
		return httpio.NewForbiddenMessage("No tiene permisos para editar. El rol Viewer es de solo lectura.")
	}

	return nil
}
