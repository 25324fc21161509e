package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/elwebctl/internal/channel"
	"github.com/danmuck/elwebctl/internal/config"
	"github.com/danmuck/elwebctl/internal/logging"
	"github.com/danmuck/elwebctl/internal/observability"
	"github.com/danmuck/elwebctl/internal/syscmd"
	"github.com/danmuck/elwebctl/internal/webserver"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "elwebctl: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	link       string
	device     string
	baud       int
	address    string
	adminAddr  string
	listPorts  bool
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options
	fs := pflag.NewFlagSet("elwebctl", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	fs.StringVar(&opts.link, "link", config.LinkSerial, "link kind: serial|tcp")
	fs.StringVarP(&opts.device, "device", "d", "", "serial device")
	fs.IntVarP(&opts.baud, "baud", "b", 0, "serial baud rate")
	fs.StringVar(&opts.address, "address", "", "host:port of a tcp link")
	fs.StringVar(&opts.adminAddr, "admin-addr", "", "admin HTTP listen address (empty disables)")
	fs.BoolVar(&opts.listPorts, "list-ports", false, "list serial ports and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	return opts, fs, nil
}

// resolveConfig applies explicitly set flags on top of the config file.
func resolveConfig(opts options, fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if fs.Changed("link") {
		cfg.Link = opts.link
	}
	if fs.Changed("device") {
		cfg.Device = opts.device
	}
	if fs.Changed("baud") {
		cfg.Baud = opts.baud
	}
	if fs.Changed("address") {
		cfg.Address = opts.address
	}
	if fs.Changed("admin-addr") {
		cfg.AdminAddr = opts.adminAddr
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(args []string) error {
	opts, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.listPorts {
		return listPorts(os.Stdout)
	}
	cfg, err := resolveConfig(opts, fs)
	if err != nil {
		return err
	}

	logging.ConfigureRuntime(logging.WithApp("elwebctl"), logging.WithFile(cfg.LogFile))
	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rw, err := openLink(cfg)
	if err != nil {
		return err
	}
	client := channel.New(rw, cfg.Channel())
	defer client.Close()
	web := webserver.New(client)

	if err := client.Sync(ctx); err != nil {
		return fmt.Errorf("sync link: %w", err)
	}
	if now, err := syscmd.New(client).Clock(ctx); err != nil {
		log.Warn().Err(err).Msg("elwebctl.run clock query failed")
	} else if now.IsZero() {
		log.Info().Msg("elwebctl.run co-processor clock not set")
	} else {
		log.Info().Time("clock", now).Msg("elwebctl.run co-processor clock")
	}

	site := newPages(time.Now())
	if err := site.register(web); err != nil {
		return err
	}
	if err := web.Setup(); err != nil {
		return fmt.Errorf("register web callback: %w", err)
	}
	client.Every(cfg.RenewInterval, func() {
		if err := web.RegisterCallback(); err != nil {
			log.Warn().Err(err).Msg("elwebctl.run callback renewal failed")
		}
	})
	client.Every(time.Second, func() {
		site.voltage.Record(time.Now(), demoVoltage(time.Now()))
	})

	if cfg.AdminAddr != "" {
		go serveAdmin(ctx, cfg.AdminAddr, web)
	}

	log.Info().Str("link", cfg.Link).Strs("handlers", web.URLs()).Msg("elwebctl.run serving")
	err = client.Run(ctx)
	log.Info().Err(err).Msg("elwebctl.run shutdown")
	return err
}

func serveAdmin(ctx context.Context, addr string, web *webserver.Server) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           observability.NewAdminRouter(web),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("elwebctl.admin listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("elwebctl.admin stopped")
	}
}
