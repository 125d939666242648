package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghost-toolbox/ghost-prebuild/internal/cheader"
	"github.com/ghost-toolbox/ghost-prebuild/internal/serial"
	"github.com/ghost-toolbox/ghost-prebuild/internal/watch"
)

func runAll(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()
	ctx := cmd.Context()

	if a.cfg.Helper.Enabled {
		if err := a.ensureHelper(); err != nil {
			return err
		}
	}

	if a.cfg.Patch.Enabled {
		if err := a.applyPatch(ctx); err != nil {
			return err
		}
	}

	if a.cfg.Web.Enabled {
		if err := a.buildWeb(ctx, false); err != nil {
			if !isSoftFailure(err) {
				return err
			}
			a.log.Error("skipping web assets", zap.Error(err))
		}
	}

	return nil
}

func runPatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if revertFlag {
		if err := a.patcher().Revert(); err != nil {
			return fmt.Errorf("revert failed: %w", err)
		}
		return nil
	}
	return a.applyPatch(cmd.Context())
}

func runHelper(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()
	return a.ensureHelper()
}

func runWebBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()
	return a.buildWeb(cmd.Context(), forceFlag)
}

func runWebVerify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	path := a.env.ProjectPath(a.cfg.Web.Header)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open header: %w", err)
	}
	defer f.Close()

	report, err := cheader.Verify(f)
	if err != nil {
		return fmt.Errorf("header %s is malformed: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Header: %s (guard %s)\n", path, report.Guard)
	total := 0
	for _, asset := range report.Assets {
		fmt.Fprintf(out, "  %-28s %8d bytes\n", asset.Name, asset.Size)
		total += asset.Size
	}
	fmt.Fprintf(out, "%d asset(s), %d bytes\n", len(report.Assets), total)
	return nil
}

func runWebWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()
	ctx := cmd.Context()

	if err := a.buildWeb(ctx, false); err != nil {
		return err
	}

	w := &watch.Watcher{
		Dir:    a.env.ProjectPath(a.cfg.Web.SourceDir),
		Ignore: watch.IgnoreGenerated(filepath.Base(a.cfg.Web.ChecksumFile)),
		Log:    a.log.Named("watch"),
	}
	return w.Run(ctx, func(ctx context.Context) error {
		return a.buildWeb(ctx, false)
	})
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}
	if usbFlag {
		ports = serial.FilterUSB(ports)
	}

	out := cmd.OutOrStdout()
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}

	fmt.Fprintln(out, "Available serial ports:")
	for _, p := range ports {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func (a *app) ensureHelper() error {
	res, err := a.installer().Ensure()
	if err != nil {
		return fmt.Errorf("build helper: %w", err)
	}
	a.log.Debug("build helper in place",
		zap.Int("installed", len(res.Installed)),
		zap.Int("present", len(res.Present)))
	return nil
}

func (a *app) applyPatch(ctx context.Context) error {
	start := time.Now()
	res, err := a.patcher().Apply(ctx)
	if err != nil {
		return fmt.Errorf("library patch failed: %w", err)
	}
	if !res.Skipped {
		a.log.Info("library patch done", zap.Duration("took", time.Since(start)))
	}
	return nil
}

func (a *app) buildWeb(ctx context.Context, force bool) error {
	e, err := a.embedder()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	e.SetProgressCallback(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Embedding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	})

	res, err := e.Build(ctx, force)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("web asset embedding failed: %w", err)
	}
	if !res.UpToDate {
		fmt.Fprintf(os.Stderr, "[DONE] %d file(s) embedded into %s\n", len(res.Files), res.Header)
	}
	return nil
}
