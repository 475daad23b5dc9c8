package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/verticalview/client-portal/internal/bootstrap"
	"github.com/verticalview/client-portal/internal/config"
	"github.com/verticalview/client-portal/internal/controller"
	"github.com/verticalview/client-portal/internal/core/ports"
	"github.com/verticalview/client-portal/internal/infrastructure/repository/postgres"
	"github.com/verticalview/client-portal/internal/observability/logging"
)

var errNoClient = errors.New("no client selected: pass --client with a record id or portal link")

type commandContext struct {
	clientFlag   *string
	outputFlag   *string
	logLevelFlag *string

	appOnce sync.Once
	app     *bootstrap.App
	appErr  error
}

func newCommandContext(clientFlag, outputFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		clientFlag:   clientFlag,
		outputFlag:   outputFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureApp(ctx context.Context) (*bootstrap.App, error) {
	c.appOnce.Do(func() {
		cfg := config.Load()
		logger := logging.NewJSONLogger(os.Stderr, "portalctl", *c.logLevelFlag)
		slog.SetDefault(logger)
		c.app, c.appErr = bootstrap.New(ctx, cfg, bootstrap.SitePortal, logger, nil)
	})
	return c.app, c.appErr
}

func (c *commandContext) newController(ctx context.Context, opts ...controller.Option) (*controller.Controller, error) {
	app, err := c.ensureApp(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]controller.Option{
		controller.WithLogger(app.Logger),
		controller.WithInterval(time.Duration(app.Config.PortalRefreshSeconds) * time.Second),
	}, opts...)
	return controller.New(app.Dashboards, app.Reviews, opts...), nil
}

// login loads the client named by ref, either a record id or a portal link.
func (c *commandContext) login(ctx context.Context, ctrl *controller.Controller, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errNoClient
	}
	if strings.Contains(ref, "=") {
		ok, err := ctrl.Bootstrap(ctx, ref)
		if err != nil {
			return err
		}
		if !ok {
			return errNoClient
		}
		return nil
	}
	return ctrl.Login(ctx, ref)
}

// openJournal connects to the review journal. It returns nil when
// REVIEW_JOURNAL_DSN is unset.
func (c *commandContext) openJournal(ctx context.Context, app *bootstrap.App) (ports.ReviewJournal, func(), error) {
	dsn := strings.TrimSpace(app.Config.ReviewJournalDSN)
	if dsn == "" {
		return nil, func() {}, nil
	}
	db, err := postgres.OpenDB(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open review journal: %w", err)
	}
	journal := postgres.NewReviewJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return journal, func() { _ = db.Close() }, nil
}

func (c *commandContext) clientRef() string {
	if c.clientFlag == nil {
		return ""
	}
	return *c.clientFlag
}

func (c *commandContext) output() string {
	if c.outputFlag == nil {
		return outputTable
	}
	return *c.outputFlag
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
	}
}
