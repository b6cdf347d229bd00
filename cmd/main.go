package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenhouse_controller/internal/config"
	"greenhouse_controller/internal/logger"
	"greenhouse_controller/internal/repository"
	"greenhouse_controller/internal/repository/db"
	"greenhouse_controller/internal/sensor"
	"greenhouse_controller/internal/service"

	flag "github.com/spf13/pflag"
)

func main() {
	configDir := flag.StringP("config", "c", "configs", "directory holding config.yml")
	history := flag.Bool("history", false, "print persisted alarm events and exit")
	from := flag.String("from", "", "history lower bound, RFC3339")
	to := flag.String("to", "", "history upper bound, RFC3339")
	code := flag.String("code", "", "history alarm code filter, e.g. HIGH_TEMP")
	flag.Parse()

	// load config.yml
	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	loc, _ := cfg.DataLog.TZ()
	repos, err := repository.NewRepository(conn, repository.Options{
		SetpointPath:  cfg.Setpoints.Path,
		DataLogPath:   cfg.DataLog.Path,
		DataLogFormat: cfg.DataLog.Format,
		DataLogTZ:     loc,
	})
	if err != nil {
		log.Fatalw("failed to init repositories", "err", err)
	}

	src, err := newSource(cfg)
	if err != nil {
		log.Fatalw("failed to init reading source", "err", err, "mode", cfg.Sensor.Mode)
	}

	services, err := service.NewService(repos, src, service.NewLogActuator(log), service.Options{
		DefaultSetpoint: cfg.Setpoints.Defaults(),
		DefaultLimits:   cfg.Alarms.Limits,
		HistorySize:     cfg.Alarms.HistorySize,
	}, log)
	if err != nil {
		log.Fatalw("failed to init services", "err", err)
	}

	if *history {
		if err := printHistory(services, *from, *to, *code); err != nil {
			log.Errorw("history query failed", "err", err)
			os.Exit(1)
		}
		return
	}

	// context for the control loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sp := services.Targets.LoadOrDefault(ctx)
	log.Infow("controller starting",
		"mode", cfg.Sensor.Mode,
		"target_temperature_c", sp.TemperatureC,
		"target_humidity_pct", sp.HumidityPct,
		"delay", cfg.Cycle.Delay(),
	)

	done := make(chan struct{})
	go func() {
		services.Controller.Run(ctx, cfg.Cycle.Delay())
		close(done)
	}()

	waitForShutdown(ctx, cancel, services, log)
	<-done
}

// newSource builds the simulator or the Sense HAT reader from config.
func newSource(cfg *config.Config) (sensor.Source, error) {
	opts := sensor.Options{
		Mode:   cfg.Sensor.Mode,
		Bounds: cfg.Simulation,
		Seed:   cfg.Sensor.Seed,
	}
	if cfg.Sensor.Mode == sensor.ModeHardware {
		drv, err := sensor.NewIIODriver(cfg.Sensor.IIO)
		if err != nil {
			return nil, err
		}
		opts.Driver = drv
	}
	return sensor.New(opts)
}

func printHistory(services *service.Service, from, to, code string) error {
	f := service.AlarmFilter{Code: code}
	var err error
	if f.From, err = parseOptionalTime(from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if f.To, err = parseOptionalTime(to); err != nil {
		return fmt.Errorf("to: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := services.Alarms.List(ctx, f)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Printf("%s %-10s %.1f %s\n", ev.OccurredAt.Format(time.RFC3339), ev.Code, ev.Value, ev.ID)
	}
	return nil
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// waitForShutdown blocks until SIGINT or SIGTERM. SIGHUP re-reads the stored
// setpoint.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, services *service.Service, log *logger.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sig)

	for s := range sig {
		if s == syscall.SIGHUP {
			if _, err := services.Targets.Reload(ctx); err != nil {
				log.Warnw("setpoint reload failed", "err", err)
			}
			continue
		}
		log.Infow("shutting down controller...", "signal", s.String())
		cancel()
		return
	}
}
