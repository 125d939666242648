package main

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ghost-toolbox/ghost-prebuild/internal/config"
	"github.com/ghost-toolbox/ghost-prebuild/internal/helper"
	"github.com/ghost-toolbox/ghost-prebuild/internal/logging"
	"github.com/ghost-toolbox/ghost-prebuild/internal/minify"
	"github.com/ghost-toolbox/ghost-prebuild/internal/patch"
	"github.com/ghost-toolbox/ghost-prebuild/internal/pioenv"
	"github.com/ghost-toolbox/ghost-prebuild/internal/toolchain"
	"github.com/ghost-toolbox/ghost-prebuild/internal/webasset"
)

// app carries what every command needs after flag parsing.
type app struct {
	log    *zap.Logger
	env    pioenv.Env
	cfg    config.Config
	runner toolchain.Runner
}

func newApp() (*app, error) {
	log := logging.New(verboseFlag)

	env, err := pioenv.Resolve(pioenv.Options{
		ProjectDir:   projectDirFlag,
		CoreDir:      coreDirFlag,
		PackagesDir:  packagesDirFlag,
		FrameworkDir: frameworkDirFlag,
		MCU:          mcuFlag,
	})
	if err != nil {
		return nil, err
	}

	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = filepath.Join(env.ProjectDir, config.FileName)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if mcuFlag == "" && cfg.Patch.MCU != "" {
		env.MCU = cfg.Patch.MCU
	}

	log.Debug("environment resolved",
		zap.String("project", env.ProjectDir),
		zap.String("framework", env.FrameworkDir),
		zap.String("mcu", env.MCU),
		zap.String("config", cfgPath))

	return &app{
		log:    log,
		env:    env,
		cfg:    cfg,
		runner: &toolchain.ExecRunner{Log: log, Dir: env.ProjectDir},
	}, nil
}

func (a *app) patcher() *patch.Patcher {
	return &patch.Patcher{
		LibDir:   a.env.SDKLibDir(),
		Library:  a.cfg.Patch.Library,
		FlagName: a.cfg.Patch.FlagFile,
		Symbols:  a.cfg.Patch.Symbols,
		Tool: &toolchain.Objcopy{
			Runner: a.runner,
			MCU:    a.env.MCU,
			Path:   a.cfg.Patch.Objcopy,
		},
		Log: a.log.Named("patch"),
	}
}

func (a *app) installer() *helper.Installer {
	return &helper.Installer{
		ProjectDir:       a.env.ProjectDir,
		Source:           a.cfg.Helper.Source,
		ToolDirs:         a.env.ToolDirs(),
		EmbeddedFallback: a.cfg.Helper.EmbeddedFallback,
		Log:              a.log.Named("helper"),
	}
}

func (a *app) embedder() (*webasset.Embedder, error) {
	web := a.cfg.Web
	m, err := minify.New(web.Minifier, minify.Options{
		Timeout: web.RemoteTimeout,
		Log:     a.log.Named("minify"),
	})
	if err != nil {
		return nil, err
	}

	src := a.env.ProjectPath(web.SourceDir)
	checksumPath := web.ChecksumFile
	if !filepath.IsAbs(checksumPath) {
		checksumPath = filepath.Join(src, checksumPath)
	}

	notice := "/" + filepath.ToSlash(web.SourceDir)
	if filepath.IsAbs(web.SourceDir) {
		notice = filepath.ToSlash(web.SourceDir)
	}

	return &webasset.Embedder{
		SourceDir:    src,
		HeaderPath:   a.env.ProjectPath(web.Header),
		ChecksumPath: checksumPath,
		Extensions:   web.Extensions,
		Guard:        web.Guard,
		BytesPerLine: web.BytesPerLine,
		Jobs:         web.Jobs,
		Notice:       notice,
		Minifier:     m,
		Log:          a.log.Named("web"),
	}, nil
}

// isSoftFailure reports errors the full run logs and moves past.
func isSoftFailure(err error) bool {
	return errors.Is(err, webasset.ErrSourceMissing)
}
