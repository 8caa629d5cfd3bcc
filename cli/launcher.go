package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/sliverarmory/loadctx"
	"github.com/sliverarmory/loadctx/internal/config"
	"github.com/sliverarmory/loadctx/module"
	"github.com/sliverarmory/loadctx/native"
	"github.com/sliverarmory/loadctx/resource"
)

// requester names the launcher in native resolution logs.
const requester = "loadctx"

type launcher struct {
	cfg      config.Config
	logger   *zap.Logger
	lc       *loadctx.LoadContext
	compiler *module.Compiler
	natives  *native.Resolver
	printer  *message.Printer
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	return zc.Build()
}

// newLauncher wires an active load context from cfg and preloads the
// configured native libraries.
func newLauncher(ctx context.Context, cfg config.Config) (*launcher, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	family, err := cfg.Family()
	if err != nil {
		return nil, err
	}
	tag, err := cfg.Language()
	if err != nil {
		return nil, err
	}

	lc := loadctx.New(loadctx.WithLogger(logger))
	if err := lc.Initialize(cfg.RootDirectory); err != nil {
		return nil, err
	}
	logger.Info("launcher configured",
		zap.String("root", lc.Root()),
		zap.String("platform", family.String()),
		zap.String("locale", tag.String()),
	)

	natives, err := native.NewResolver(lc.Root(),
		native.WithFamily(family),
		native.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	compiler := module.NewCompiler(ctx, module.WithCompilerLogger(logger))
	modules := resource.New(lc, compiler,
		resource.WithSuffix(cfg.ModuleSuffix),
		resource.WithLogger(logger),
	)
	if err := lc.RegisterResolvers(loadctx.NewResolver(lc, modules, natives)); err != nil {
		_ = compiler.Close(ctx)
		return nil, err
	}

	if len(cfg.Preload) > 0 {
		if _, err := natives.Preload(ctx, requester, cfg.Preload); err != nil {
			_ = compiler.Close(ctx)
			return nil, fmt.Errorf("preload native libraries: %w", err)
		}
	}

	return &launcher{
		cfg:      cfg,
		logger:   logger,
		lc:       lc,
		compiler: compiler,
		natives:  natives,
		printer:  message.NewPrinter(tag),
	}, nil
}

func (l *launcher) close(ctx context.Context) error {
	err := l.compiler.Close(ctx)
	// Sync fails on console outputs on some platforms; only report it
	// alongside a real error.
	if syncErr := l.logger.Sync(); err != nil {
		return errors.Join(err, syncErr)
	}
	return err
}
