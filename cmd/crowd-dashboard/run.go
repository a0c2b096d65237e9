package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crowd-dashboard/pkg/alert"
	"crowd-dashboard/pkg/config"
	"crowd-dashboard/pkg/dashboard"
	"crowd-dashboard/pkg/model"
	"crowd-dashboard/pkg/scrape"
	"crowd-dashboard/pkg/server"
	"crowd-dashboard/pkg/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the crowd endpoint and serve the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewLoader(cfgFile).Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, cmd.OutOrStdout(), logrus.StandardLogger())
	},
}

// run wires every component from cfg and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, out io.Writer, log logrus.FieldLogger) error {
	loc, err := cfg.Global.Location()
	if err != nil {
		return errors.Wrap(err, "time zone")
	}
	labels := model.LabelsFromMap(cfg.Endpoint.Labels)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := dashboard.NewMetricsSurface(reg, labels)
	if err != nil {
		return errors.Wrap(err, "register dashboard metrics")
	}
	surfaces := []dashboard.Surface{metrics}
	if !cfg.Terminal.Quiet {
		surfaces = append(surfaces, dashboard.NewTerminalSurface(out, cfg.Terminal.MaxPoints))
	}
	if cfg.Alert.Enabled {
		alerter := alert.NewAlerter(cfg.Alert, alert.NewSMTPMailer(cfg.Alert), loc, log.WithField("component", "alert"))
		log.WithField("capacity", alerter.Capacity()).Info("overcrowding alert enabled")
		// 在 scraper 停止之后执行, 等待仍在发送的告警
		defer func() {
			_ = alerter.Close()
		}()
		surfaces = append(surfaces, alerter)
	}

	d := dashboard.New(storage.NewMemoryStorage(), model.NewTimeFormatter(cfg.Global.TimeFormat, loc),
		dashboard.WithSurfaces(surfaces...),
		dashboard.WithLogger(log.WithField("component", "dashboard")),
	)
	if err := d.Init(ctx); err != nil {
		log.WithError(err).Warn("initial render incomplete")
	}

	scraper, err := scrape.NewScraper(cfg, d,
		scrape.WithRegisterer(reg),
		scrape.WithLogger(log.WithField("component", "scrape")),
	)
	if err != nil {
		return err
	}
	if err := scraper.Start(); err != nil {
		return err
	}
	defer func() {
		_ = scraper.Stop()
	}()

	srv := server.New(cfg.Server.Listen, d, reg, log.WithField("component", "server"))
	return srv.ListenAndServe(ctx)
}
