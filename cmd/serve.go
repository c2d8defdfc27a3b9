package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pable/go-season-diag/internal/api"
	"github.com/pable/go-season-diag/pkg/logger"
	"github.com/pable/go-season-diag/pkg/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve diagnoses over HTTP",
	Long: `Starts an HTTP server exposing:

  GET /healthz
  GET /metrics
  GET /v1/players/{playerID}/seasons/{season}/diagnosis[?name=&refresh=&save=&format=json|summary]
  GET /v1/diagnoses[?player_id=&season=&limit=]
  GET /v1/diagnoses/{id}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := api.NewServer(a.service,
		api.WithHistory(a.db),
		api.WithCatalog(a.service.Engine().Catalog()),
		api.WithMetrics(metrics.Default()),
		api.WithLogger(logger.Named("api")),
		api.WithRequestTimeout(cfg.HTTPTimeout+cfg.HTTPTimeout/2),
	)
	return srv.ListenAndServe(ctx, addr)
}
