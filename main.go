package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ptgott/housing-society/fees"
	"github.com/ptgott/housing-society/poller"
	"github.com/ptgott/housing-society/society"
	"github.com/ptgott/housing-society/storage"
	"github.com/ptgott/housing-society/userconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Log with filename and line number. This writes to stderr, so it should
	// be thread safe.
	log.Logger = log.With().Caller().Logger()

	configPath := flag.String(
		"config",
		"./config.yaml",
		"path to a JSON or YAML file containing your configuration",
	)
	oneOff := flag.Bool(
		"oneoff",
		false,
		"run the monthly fee check once and exit",
	)
	date := flag.String(
		"date",
		"",
		"with -oneoff, check as if today were this date (YYYY-MM-DD)",
	)
	initTables := flag.Bool(
		"init",
		false,
		"write empty table files that don't exist yet, then exit",
	)
	showHistory := flag.Bool(
		"history",
		false,
		"print the recorded recompute cycles and exit",
	)
	level := flag.String(
		"level",
		"info",
		`log level: "info", "debug", or "warn"`,
	)
	flag.Parse()

	switch *level {
	case "debug":
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	case "warn":
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
	default:
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	log.Info().
		Str("configPath", *configPath).
		Msg("starting the application")

	f, err := os.Open(*configPath)
	if err != nil {
		log.Error().
			Str("config-path", *configPath).
			Err(err).
			Msg("We can't open the application config file")
		os.Exit(1)
	}

	config, err := userconfig.Parse(f)
	f.Close()
	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem parsing your config")
		os.Exit(1)
	}

	checkedConfig, err := config.CheckAndSetDefaults()
	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem validating your config")
		os.Exit(1)
	}

	log.Info().Str("configPath", *configPath).Msg("successfully validated the config")

	paths := society.PathsIn(checkedConfig.Tables.DataDir)

	if *initTables {
		created, err := society.Init(paths)
		if err != nil {
			log.Error().Err(err).Msg("can't initialize the tables")
			os.Exit(1)
		}
		log.Info().Strs("created", created).Msg("initialized the tables")
		return
	}

	history, err := openHistory(checkedConfig.History)
	if err != nil {
		log.Error().Err(err).Msg("can't open the history database")
		os.Exit(1)
	}
	defer func() {
		if err := history.Close(); err != nil {
			log.Error().Err(err).Msg("error closing the history database")
		}
	}()

	if *showHistory {
		if err := printHistory(history); err != nil {
			log.Error().Err(err).Msg("can't read the history database")
			os.Exit(1)
		}
		return
	}

	// The tables must exist. Starting with empty tables would overwrite the
	// real ones on the first save.
	tables, err := society.Open(paths, society.Options{
		Size:        checkedConfig.Tables.Size,
		MaxFileSize: checkedConfig.Tables.MaxFileSize,
		Rates:       *checkedConfig.Fees,
	})
	if err != nil {
		log.Error().Err(err).Msg("Error: one or more table files could not be loaded")
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engine := tables.FeeEngine(history, fees.NewMetrics(reg))

	if *oneOff {
		if *date != "" {
			at, err := time.ParseInLocation("2006-01-02", *date, time.Local)
			if err != nil {
				log.Error().Err(err).Msg("can't parse -date")
				os.Exit(1)
			}
			engine.Clock = func() time.Time { return at }
		}
		if err := engine.Check(); err != nil {
			log.Error().Err(err).Msg("the maintenance fee check failed")
			// Close before exiting so the failed cycle's history record
			// is flushed.
			history.Close()
			os.Exit(1)
		}
		return
	}

	if addr := checkedConfig.Metrics.Address; addr != "" {
		go serveMetrics(addr, reg)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(checkedConfig.Schedule.Interval)
	defer ticker.Stop()
	stopCh := make(chan struct{})
	errCh := make(chan error)
	doneCh := make(chan struct{})

	go func() {
		poller.StartLoop(&poller.Loop{
			TickCh:     ticker.C,
			StopCh:     stopCh,
			ErrCh:      errCh,
			RunOnStart: checkedConfig.Schedule.RunOnStart,
		}, engine.Check)
		close(doneCh)
	}()

	log.Info().
		Dur("interval", checkedConfig.Schedule.Interval).
		Msg("scheduled the maintenance fee check")

	// At this point, the main goroutine blocks until there's an error to
	// print or we're asked to exit.
	for {
		select {
		case err := <-errCh:
			log.Error().Err(err).Msg("error running the maintenance fee check")
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("exiting")
			close(stopCh)
			// Drain errors until the loop returns so a check in progress
			// can finish.
			for waiting := true; waiting; {
				select {
				case err := <-errCh:
					log.Error().Err(err).Msg("error running the maintenance fee check")
				case <-doneCh:
					waiting = false
				}
			}
			if err := tables.Save(); err != nil {
				log.Error().Err(err).Msg("can't save the tables on exit")
				os.Exit(1)
			}
			log.Info().Msg("saved the tables")
			return
		}
	}
}

func openHistory(conf storage.KVConfig) (storage.KeyValue, error) {
	if conf.StorageDirPath == "" {
		log.Debug().Msg("no history directory configured, not recording cycles")
		return &storage.NoOpDB{}, nil
	}
	db, err := storage.NewBadgerDB(&conf)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", conf.StorageDirPath).Msg("set up the history database successfully")
	return db, nil
}

func printHistory(db storage.KeyValue) error {
	cycles, err := fees.ReadHistory(db)
	if err != nil {
		return err
	}
	for _, c := range cycles {
		result := "ok"
		if c.Error != "" {
			result = c.Error
		}
		fmt.Printf(
			"%s\t%s\tusers=%d vacant=%d owners=%d tenants=%d mirrored=%d billed=%d\t%s\n",
			c.At.Format(time.RFC3339), c.ID, c.Users, c.Vacant, c.Owners, c.Tenants, c.Mirrored, c.Billed, result,
		)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("address", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("the metrics listener stopped")
	}
}
