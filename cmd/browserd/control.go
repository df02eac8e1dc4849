package cli

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserd/internal/browser"
	"github.com/neboloop/browserd/internal/defaults"
)

func client() *controlClient {
	return newControlClient(appConfig.Server.URL())
}

// StartCmd asks the control server to launch the browser.
func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Launch the managed browser via the control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st browser.Status
			if err := client().json(cmd.Context(), http.MethodPost, "/start", &st); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

// StopCmd asks the control server to stop the browser.
func StopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the managed browser via the control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st browser.Status
			if err := client().json(cmd.Context(), http.MethodPost, "/stop", &st); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "browser stopped")
			return nil
		},
	}
}

// StatusCmd prints the managed browser's state.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the managed browser's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st browser.Status
			if err := client().json(cmd.Context(), http.MethodGet, "/", &st); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

// TabsCmd lists the browser's debuggable targets.
func TabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List open tabs of the managed browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tabs []browser.Tab
			if err := client().json(cmd.Context(), http.MethodGet, "/tabs", &tabs); err != nil {
				return err
			}
			printTabs(cmd.OutOrStdout(), tabs)
			return nil
		},
	}
}

func printStatus(w io.Writer, st browser.Status) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	running := "no"
	if st.Running {
		running = "yes"
	}
	fmt.Fprintf(tw, "profile:\t%s (%s)\n", st.Profile, st.Color)
	fmt.Fprintf(tw, "running:\t%s\n", running)
	if st.State != "" {
		fmt.Fprintf(tw, "state:\t%s\n", st.State)
	}
	if st.PID != 0 {
		fmt.Fprintf(tw, "pid:\t%d\n", st.PID)
	}
	if st.Executable != "" {
		fmt.Fprintf(tw, "browser:\t%s (%s)\n", st.Executable, st.Kind)
	}
	fmt.Fprintf(tw, "debug url:\t%s\n", st.CDPURL)
	fmt.Fprintf(tw, "user data:\t%s\n", st.UserDataDir)
}

func printTabs(w io.Writer, tabs []browser.Tab) {
	if len(tabs) == 0 {
		fmt.Fprintln(w, "no tabs")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tURL")
	for _, t := range tabs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Type, t.Title, t.URL)
	}
}

// ResetConfigCmd rewrites the data directory's config with the defaults.
func ResetConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-config",
		Short: "Restore the default config file in the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := defaults.Reset(dataDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config restored in %s\n", dataDir)
			return nil
		},
	}
}
