package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghost-toolbox/ghost-prebuild/embedded"
	"github.com/ghost-toolbox/ghost-prebuild/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	projectDirFlag   string
	coreDirFlag      string
	packagesDirFlag  string
	frameworkDirFlag string
	mcuFlag          string
	configFlag       string
	verboseFlag      bool

	forceFlag  bool
	revertFlag bool
	usbFlag    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError logs a command failure. Cobra's own error output is silenced
// so each failure is reported once.
func reportError(err error) {
	log := logging.New(verboseFlag)
	defer log.Sync()
	log.Error("ghost-prebuild failed", zap.Error(err))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ghost-prebuild",
		Short: "PlatformIO pre-build steps for the Ghost Toolbox firmware",
		Long: `Ghost Prebuild prepares an ESP32 Arduino project before PlatformIO compiles it.

It places the pioarduino-build.py helper in the framework tools directories,
weakens symbols in the prebuilt libnet80211.a once, and embeds the minified,
gzip-compressed web interface into include/webFiles.h whenever it changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&projectDirFlag, "project-dir", "", "PlatformIO project directory (default $PROJECT_DIR or cwd)")
	pf.StringVar(&coreDirFlag, "core-dir", "", "PlatformIO core directory (default $PLATFORMIO_CORE_DIR or ~/.platformio)")
	pf.StringVar(&packagesDirFlag, "packages-dir", "", "PlatformIO packages directory (default $PLATFORMIO_PACKAGES_DIR)")
	pf.StringVar(&frameworkDirFlag, "framework-dir", "", "framework-arduinoespressif32 package directory")
	pf.StringVar(&mcuFlag, "mcu", "", "Board MCU (build.mcu), e.g. esp32 or esp32s3")
	pf.StringVarP(&configFlag, "config", "c", "", "Config file (default <project>/ghost-prebuild.toml)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run every enabled pre-build step",
		Long: `Run the full pre-build sequence:
  1. Place pioarduino-build.py in the framework tools directories
  2. Weaken WiFi driver symbols (once, guarded by the .patched flag)
  3. Embed web assets into the header (only when sources changed)`,
		Args: cobra.NoArgs,
		RunE: runAll,
	}

	// Patch command
	patchCmd := &cobra.Command{
		Use:   "patch",
		Short: "Weaken symbols in the prebuilt WiFi library",
		Args:  cobra.NoArgs,
		RunE:  runPatch,
	}
	patchCmd.Flags().BoolVar(&revertFlag, "revert", false, "Restore the original library and clear the flag")

	// Helper command
	helperCmd := &cobra.Command{
		Use:   "helper",
		Short: "Place pioarduino-build.py in the framework tools directories",
		Args:  cobra.NoArgs,
		RunE:  runHelper,
	}

	// Web commands
	webCmd := &cobra.Command{
		Use:   "web",
		Short: "Manage the embedded web interface header",
	}
	webBuildCmd := &cobra.Command{
		Use:   "build",
		Short: "Regenerate the header if web sources changed",
		Args:  cobra.NoArgs,
		RunE:  runWebBuild,
	}
	webBuildCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Regenerate even if sources are unchanged")
	webVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the generated header is well-formed",
		Args:  cobra.NoArgs,
		RunE:  runWebVerify,
	}
	webWatchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the header whenever web sources change",
		Args:  cobra.NoArgs,
		RunE:  runWebWatch,
	}
	webCmd.AddCommand(webBuildCmd, webVerifyCmd, webWatchCmd)

	// Shim command
	shimCmd := &cobra.Command{
		Use:   "shim",
		Short: "Print the PlatformIO extra_scripts shim that calls this tool",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.OutOrStdout().Write(embedded.PrebuildShim())
		},
	}

	// Ports command
	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports the board may be attached to",
		Args:  cobra.NoArgs,
		RunE:  runPorts,
	}
	portsCmd.Flags().BoolVar(&usbFlag, "usb", false, "Only list USB serial adapters")

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ghost-prebuild %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}

	rootCmd.AddCommand(runCmd, patchCmd, helperCmd, webCmd, shimCmd, portsCmd, versionCmd)
	return rootCmd
}
