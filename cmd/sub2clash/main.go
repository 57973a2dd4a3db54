package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/John-Robertt/sub2clash/internal/applog"
	"github.com/John-Robertt/sub2clash/internal/config"
	"github.com/John-Robertt/sub2clash/internal/httpapi"
	"github.com/John-Robertt/sub2clash/internal/pipeline"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sub2clash",
		Usage: "convert ss:// / vmess:// subscriptions into Clash configs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug/info/warn/error)",
				EnvVars: []string{"SUB2CLASH_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP conversion service",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (.yaml/.yml/.ini)"},
					&cli.StringFlag{Name: "listen", Usage: "HTTP listen address"},
					&cli.DurationFlag{Name: "read-header-timeout", Usage: "HTTP ReadHeaderTimeout"},
					&cli.DurationFlag{Name: "convert-timeout", Usage: "total timeout of one conversion (fetch included)"},
					&cli.DurationFlag{Name: "fetch-timeout", Usage: "timeout of the upstream subscription request"},
					&cli.DurationFlag{Name: "shutdown-timeout", Usage: "graceful shutdown wait after a signal"},
				},
			},
			{
				Name:   "convert",
				Usage:  "convert a local subscription payload",
				Action: runConvert,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "input file, - for stdin", Value: "-"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, - for stdout", Value: "-"},
				},
			},
			{
				Name:   "healthcheck",
				Usage:  "probe /healthz of a running service",
				Action: runHealthcheckCmd,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "healthz URL (overrides --listen)"},
					&cli.StringFlag{Name: "listen", Usage: "listen address of the service", Value: config.DefaultListen},
					&cli.DurationFlag{Name: "timeout", Usage: "probe timeout", Value: 3 * time.Second},
				},
			},
		},
	}
}

func loadServerConfig(c *cli.Context) (config.Server, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Server{}, err
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("read-header-timeout") {
		cfg.ReadHeaderTimeout = c.Duration("read-header-timeout")
	}
	if c.IsSet("convert-timeout") {
		cfg.ConvertTimeout = c.Duration("convert-timeout")
	}
	if c.IsSet("fetch-timeout") {
		cfg.FetchTimeout = c.Duration("fetch-timeout")
	}
	if c.IsSet("shutdown-timeout") {
		cfg.ShutdownTimeout = c.Duration("shutdown-timeout")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg.WithDefaults(), nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadServerConfig(c)
	if err != nil {
		return err
	}
	applog.Init(cfg.LogLevel, nil)

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: httpapi.NewHandlerWithOptions(httpapi.Options{
			ConvertTimeout: cfg.ConvertTimeout,
			FetchTimeout:   cfg.FetchTimeout,
			MaxBodyBytes:   cfg.MaxBodyBytes,
			UserAgent:      cfg.UserAgent,
		}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	log.Info().Msgf("listening on http://%s", cfg.Listen)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown failed")
			_ = srv.Close()
		}

		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func runConvert(c *cli.Context) error {
	level := c.String("log-level")
	if level == "" {
		level = "warn"
	}
	applog.Init(level, os.Stderr)

	in, err := readInput(c.String("in"), c.App.Reader)
	if err != nil {
		return err
	}

	res := pipeline.Convert(in)
	log.Info().
		Int("proxies", res.Stats.Decoded).
		Int("skipped", res.Stats.Skipped).
		Int("unrecognized", res.Stats.Unrecognized).
		Msg("converted")

	out := c.String("out")
	if out == "" || out == "-" {
		_, err := io.WriteString(c.App.Writer, res.Text+"\n")
		return err
	}
	if err := os.WriteFile(out, []byte(res.Text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

func runHealthcheckCmd(c *cli.Context) error {
	target := strings.TrimSpace(c.String("url"))
	if target == "" {
		u, err := deriveHealthzURL(c.String("listen"))
		if err != nil {
			return err
		}
		target = u
	}
	return runHealthcheck(target, c.Duration("timeout"))
}

// deriveHealthzURL maps a listen address to a loopback /healthz URL.
func deriveHealthzURL(listen string) (string, error) {
	s := strings.TrimSpace(listen)
	if s == "" {
		return "", errors.New("empty listen address")
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("parse listen url: %w", err)
		}
		u.Path = "/healthz"
		u.RawQuery = ""
		return u.String(), nil
	}
	if !strings.Contains(s, ":") {
		s = ":" + s
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return "", fmt.Errorf("parse listen address: %w", err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/healthz", nil
}

func runHealthcheck(target string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: unexpected status %d", resp.StatusCode)
	}
	return nil
}
