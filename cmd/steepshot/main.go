package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	steepshot "github.com/dvcrn/steepshot-go"
	"github.com/dvcrn/steepshot-go/internal/config"
	"github.com/dvcrn/steepshot-go/internal/env"
	"github.com/dvcrn/steepshot-go/internal/logger"
	"github.com/dvcrn/steepshot-go/internal/mockapi"
	"github.com/dvcrn/steepshot-go/internal/session"
)

const usage = `usage: steepshot [-config file] [-mock] [-timeout d] <command> [args]

commands:
  login <username> <password>
  register <posting-key> <username> <password>
  logout
  top [-offset id] [-limit n]
  posts [-type top|hot|new] [-offset id] [-limit n]
  user-posts <username> [-offset id] [-limit n]
  friends <username> [-following] [-offset id] [-limit n]
  comments <post-url>
  comment <post-url> -body text [-title text]
  vote <post-url> [-down]
  follow <username> [-unfollow]
  upload <file> -title text [-tags a,b]
  categories [-offset name] [-limit n]
  search-categories <query> [-offset name] [-limit n]
  low-rated [-set true|false]
  feed [-limit n]
  serve-mock [-addr host:port]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("steepshot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", env.GetOrDefault("STEEPSHOT_CONFIG", ""), "YAML config file")
	mock := fs.Bool("mock", false, "run against an in-process mock API")
	timeout := fs.Duration("timeout", 30*time.Second, "per-command timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	log := logger.Component("cli")

	if cmd == "serve-mock" {
		return serveMock(ctx, cmdArgs, stderr, log)
	}

	var (
		cfgOpts []config.Option
		store   session.Store
	)
	if *mock {
		base, shutdown, err := startMock(log)
		if err != nil {
			fmt.Fprintf(stderr, "start mock api: %v\n", err)
			return 1
		}
		defer shutdown()
		cfgOpts = append(cfgOpts, config.WithBaseURL(base))

		// Mock tokens die with the mock server and must not replace a real session.
		dir, err := os.MkdirTemp("", "steepshot-mock-")
		if err != nil {
			fmt.Fprintf(stderr, "session: %v\n", err)
			return 1
		}
		defer os.RemoveAll(dir)
		store = session.NewFileStoreAt(filepath.Join(dir, "session.json"))
	}

	cfg, err := config.Load(*configPath, cfgOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	client, err := steepshot.NewClient(cfg.BaseURL,
		steepshot.WithLogger(logger.Component("client")),
		steepshot.WithUserAgent(cfg.UserAgent),
		steepshot.WithDefaultLimit(cfg.DefaultLimit),
		steepshot.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
	if err != nil {
		fmt.Fprintf(stderr, "client: %v\n", err)
		return 1
	}

	if store == nil {
		fileStore, err := session.NewFileStore()
		if err != nil {
			fmt.Fprintf(stderr, "session: %v\n", err)
			return 1
		}
		store = fileStore
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	a := &app{client: client, store: store, out: stdout, errOut: stderr, log: log}
	handler, ok := a.commands()[cmd]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}

	log.Debug().Str("command", cmd).Str("base_url", cfg.BaseURL).Msg("Running command")
	return handler(ctx, cmdArgs)
}

// startMock serves the mock API on a random loopback port.
func startMock(log zerolog.Logger) (baseURL string, shutdown func(), err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	api := mockapi.NewServer(mockapi.WithLogger(logger.Component("mockapi")))
	srv := &http.Server{Handler: api, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Mock API stopped")
		}
	}()

	baseURL = "http://" + ln.Addr().String() + api.Prefix()
	log.Info().Str("base_url", baseURL).Msg("Mock API listening")
	return baseURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func serveMock(ctx context.Context, args []string, stderr io.Writer, log zerolog.Logger) int {
	fs := flag.NewFlagSet("serve-mock", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", ":"+env.GetOrDefault("PORT", "9877"), "listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	api := mockapi.NewServer(mockapi.WithLogger(logger.Component("mockapi")))
	srv := &http.Server{Addr: *addr, Handler: api, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", *addr).Str("prefix", api.Prefix()).Msg("Starting mock API")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Mock API failed")
		return 1
	}
	return 0
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
