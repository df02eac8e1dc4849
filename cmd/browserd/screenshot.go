package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserd/internal/browser"
	"github.com/neboloop/browserd/internal/logging"
)

// ScreenshotCmd launches the browser, captures one PNG and shuts it down.
func ScreenshotCmd() *cobra.Command {
	var (
		output   string
		targetID string
		fullPage bool
		keep     bool
	)

	cmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Capture a PNG of the managed browser's page",
		Long: `Launch the managed browser, capture a PNG of a tab and shut the
browser down again. When the debug port is already taken the capture is
requested from the running control server instead.

Examples:
  browserd screenshot -o page.png
  browserd screenshot -o full.png --full-page
  browserd screenshot --keep          # leave the browser running`,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := captureLocal(cmd.Context(), targetID, fullPage, keep)
			if errors.Is(err, browser.ErrPortUnavailable) {
				logging.Infof("debug port busy; asking control server at %s", appConfig.Server.URL())
				img, err = client().screenshot(cmd.Context(), targetID, fullPage)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, img, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(img))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "screenshot.png", "output file")
	cmd.Flags().StringVar(&targetID, "target", "", "target id (default: first page)")
	cmd.Flags().BoolVar(&fullPage, "full-page", false, "capture the whole document instead of the viewport")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave the browser running afterwards")

	return cmd
}

func captureLocal(ctx context.Context, targetID string, fullPage, keep bool) ([]byte, error) {
	manager := browser.NewManager(appConfig.ResolveBrowser(dataDir), nil)
	if keep {
		defer func() {
			logging.Infof("browser left running at %s", manager.Config().CDPURL())
		}()
	} else {
		defer func() {
			if err := manager.Stop(); err != nil {
				logging.Warnf("stop browser: %v", err)
			}
		}()
	}
	return manager.Screenshot(ctx, targetID, fullPage)
}
