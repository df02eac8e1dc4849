package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserd/internal/browser"
	"github.com/neboloop/browserd/internal/logging"
	"github.com/neboloop/browserd/internal/server"
)

// ServeCmd runs the control server in the foreground.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the control server",
		Long: `Run the local control API. The browser is launched on the first
start or screenshot request and stopped when the server exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logging.Sync()

	lock, err := acquireLock(dataDir)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	manager := browser.NewManager(appConfig.ResolveBrowser(dataDir), nil)
	defer func() {
		if err := manager.Stop(); err != nil {
			logging.Warnf("stop browser: %v", err)
		}
	}()

	cfg := manager.Config()
	logging.Infof("profile %q at %s, debug port %d", cfg.ProfileName, cfg.UserDataDir, cfg.CDPPort)
	return server.Run(ctx, appConfig.Server.Addr(), manager)
}
