package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/neo/internal/logger"
	"github.com/mesh-intelligence/neo/internal/server"
	"github.com/mesh-intelligence/neo/internal/watch"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch bool
		opts  server.Options
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups and queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, addr, watch, opts)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&opts.RateLimit, "rate", 0, "requests per second across all clients, 0 for unlimited")
	cmd.Flags().IntVar(&opts.Burst, "burst", 10, "requests allowed at once when --rate is set")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the datasets when their files change")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, addr string, watchFiles bool, opts server.Options) error {
	db, err := a.database()
	if err != nil {
		return err
	}

	if !a.flags.debug {
		gin.SetMode(gin.ReleaseMode)
	}
	h := server.NewHandler(db)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchFiles {
		cfg := a.cfg
		w, err := watch.New([]string{cfg.NEOFile, cfg.CADFile}, func() error {
			db, err := loadDatabase(cfg)
			if err != nil {
				return err
			}
			h.Replace(db)
			return nil
		})
		if err != nil {
			return err
		}
		go w.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Logger.Infow("serving", "addr", addr, "rate", opts.RateLimit)
	pterm.Fprintln(cmd.OutOrStdout(), pterm.Green("Listening on "+addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	logger.Logger.Infow("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
