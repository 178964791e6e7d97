package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezonai/stakeledger/exception"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/monitoring"
	"github.com/mezonai/stakeledger/staking"
)

const (
	defaultMetricsAddr    = ":9100"
	metricsRefreshPeriod  = 15 * time.Second
	metricsShutdownPeriod = 5 * time.Second
)

var metricsListenAddr string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"serve-metrics"},
	Short:   "Serve the read-only staking API and prometheus /metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			addr := metricsListenAddr
			if addr == "" {
				addr = a.node.Metrics.ListenAddr
			}
			if addr == "" {
				addr = defaultMetricsAddr
			}

			monitoring.InitMetrics()
			router := staking.NewStakingAPI(a.engine).GetRouter()
			router.Handle("/metrics", monitoring.Handler()).Methods("GET")
			srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exception.SafeGo("metrics-refresh", func() {
				ticker := time.NewTicker(metricsRefreshPeriod)
				defer ticker.Stop()
				for {
					refreshGauges(a)
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
					}
				}
			})
			exception.SafeGoWithPanic("metrics-server", func() {
				logx.Info("CMD", "Serving staking API and metrics on ", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logx.Error("CMD", "HTTP server stopped: ", err)
					stop()
				}
			})

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownPeriod)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	},
}

func refreshGauges(a *app) {
	pool, err := a.engine.Pool()
	if err != nil {
		logx.Warn("CMD", "Skipping metrics refresh: ", err)
		return
	}
	for _, entry := range pool.SupportedAssets {
		monitoring.SetTotalStaked(entry.Asset.String(), entry.TotalStaked)
	}
	treasury, err := a.engine.TreasuryBalance()
	if err != nil {
		logx.Warn("CMD", "Failed to read treasury: ", err)
		return
	}
	monitoring.SetTreasuryBalance(treasury)
}

func init() {
	serveCmd.Flags().StringVar(&metricsListenAddr, "listen", "", "Listen address, [metrics] listen_addr when empty")
	rootCmd.AddCommand(serveCmd)
}
