package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/five82/feedsync/internal/app"
)

var (
	configPath  string
	prefsPath   string
	pollSeconds int
)

var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := rootCmd()
	root.AddCommand(dumpCmd())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "feedsync: %v\n", err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "feedsync",
		Short: "Browse and react to a remote feed from the terminal",
		Long: `Browse and react to a remote feed from the terminal.

Pages load as you scroll, reactions apply instantly and roll back if the
server rejects them, and new posts stream in while you read. Space enters
selection mode, which holds incoming posts until you press esc.

When stdout is not a terminal, feedsync prints the feed instead (see dump).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := baseOptions()
			if plain || !isTerminal(os.Stdout.Fd()) {
				opts.Plain = true
				opts.Out = cmd.OutOrStdout()
			}
			return app.Run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "override config path (default ~/.config/feedsync/config.toml)")
	cmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "override prefs path (default ~/.config/feedsync/prefs.toml)")
	cmd.Flags().IntVar(&pollSeconds, "poll", 0, "realtime poll interval in seconds (negative disables)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the feed instead of starting the TUI")
	return cmd
}

func dumpCmd() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the feed as tab-separated lines",
		Long: `Print the feed as tab-separated lines: id, author, text and reactions.

Pages are fetched with the same pagination rules as the TUI until the end of
the feed, or until --pages pages have been printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := baseOptions()
			opts.Plain = true
			opts.Pages = pages
			opts.Out = cmd.OutOrStdout()
			return app.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 0, "number of pages to print (0 prints all)")
	return cmd
}

func baseOptions() app.Options {
	return app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		PollEvery:  pollSeconds,
	}
}
