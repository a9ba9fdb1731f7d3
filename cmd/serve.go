package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/server"
	"github.com/conneroisu/stegtext/internal/services"
	"github.com/conneroisu/stegtext/internal/wordlist"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API",
	Long: `Serve the hide, extract and analysis operations over HTTP.

Endpoints:
  POST /api/hide        POST /api/extract
  POST /api/analyze     POST /api/compare
  GET  /api/capacity    GET  /api/wordlists
  GET  /api/version     GET  /health
  GET  /ws/analyze      one detection per text frame

With --watch, word list files named in the configuration are reloaded as
soon as they change. The server stops cleanly on SIGINT or SIGTERM.

Examples:
  stegtext serve
  stegtext serve --host 0.0.0.0 --port 9000
  STEGTEXT_SERVER_ALLOWED_ORIGINS="*.example.com" stegtext serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveWatch bool
	serveFlags *StandardFlags
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Reload word list files when they change")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := serveFlags.ValidateFlags(); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveFlags.Host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serveFlags.Port
	}
	if cmd.Flags().Changed("watch") {
		cfg.WordLists.Watch = serveWatch
	}

	store, err := wordlist.NewStore(cfg.WordLists.ShortFile, cfg.WordLists.LongFile, logger)
	if err != nil {
		return err
	}
	stego := services.NewStegoServiceFromConfig(cfg, store, logger)
	srv := server.New(&cfg.Server, stego, logger)
	serveService := services.NewServeService(cfg, store, srv, logger)

	info := serveService.GetServerInfo()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving stegtext at %s\n", info.ServerURL)

	if _, err := serveService.Serve(cmd.Context()); err != nil {
		var se *errors.StegError
		if stderrors.As(err, &se) {
			if hint, ok := se.Context["hint"]; ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %v\n", hint)
			}
		}
		return err
	}
	return nil
}
