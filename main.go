// Command gridpath runs the grid pathfinder.
//
// Commands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – MCP stdio server; reuses a running API server or starts an internal one
//  3. "console" – interactive menu in the terminal
//  4. "solve FILE" – one-shot search over a snapshot or layout file
//
// Flags control host/port, layout and session directories, debug logging,
// the search budget, and optional ngrok tunneling for external access during
// development. Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/gridpath/api"
	"github.com/wricardo/gridpath/console"
	"github.com/wricardo/gridpath/planner/layout"
	"github.com/wricardo/gridpath/planner/pathfinder"
	"github.com/wricardo/gridpath/planner/service"
	"github.com/wricardo/gridpath/planner/session"
	"github.com/wricardo/gridpath/planner/snapshot"
	"github.com/wricardo/gridpath/transport/mcp"
	"github.com/wricardo/gridpath/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Pathfinder"
)

// config holds the resolved command-line settings.
type config struct {
	host          string
	port          int
	layoutsDir    string
	sessionsDir   string
	defaultLayout string
	apiURL        string
	debug         bool
	maxExpansions int
	sessionTTL    time.Duration

	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func (c config) addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

func (c config) pathfinderOptions() []pathfinder.Option {
	if c.maxExpansions > 0 {
		return []pathfinder.Option{pathfinder.WithMaxExpansions(c.maxExpansions)}
	}
	return nil
}

// main loads .env, builds the command tree and runs it until a signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Debug("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the root command. Flags are inherited by every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "gridpath",
		Usage:   "shortest paths on 4-connected grids",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("GRIDPATH_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("GRIDPATH_PORT", "PORT"),
			},
			&cli.StringFlag{
				Name:    "layouts-dir",
				Value:   "layouts",
				Usage:   "Directory containing layout presets",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory where sessions are persisted",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-layout",
				Usage:   "Layout used when a session is created without one",
				Sources: cli.EnvVars("DEFAULT_LAYOUT"),
			},
			&cli.IntFlag{
				Name:    "max-expansions",
				Usage:   "Abort a search after expanding this many cells (0 = unlimited)",
				Sources: cli.EnvVars("MAX_EXPANSIONS"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Evict sessions from memory after this long without access",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "REST API to proxy to; an internal server is started if it is not reachable",
						Sources: cli.EnvVars("GRIDPATH_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:      "console",
				Usage:     "Interactive field editor",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-color",
						Usage: "Disable ANSI colours",
					},
				},
				Action: runConsole,
			},
			{
				Name:      "solve",
				Usage:     "Find the shortest path in a snapshot or layout file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the solved grid to this file (.json, .yaml)",
					},
				},
				Action: runSolve,
			},
		},
	}
}

func configFromCommand(cmd *cli.Command) config {
	return config{
		host:          cmd.String("host"),
		port:          int(cmd.Int("port")),
		layoutsDir:    cmd.String("layouts-dir"),
		sessionsDir:   cmd.String("sessions-dir"),
		defaultLayout: cmd.String("default-layout"),
		apiURL:        cmd.String("api-url"),
		debug:         cmd.Bool("debug"),
		maxExpansions: int(cmd.Int("max-expansions")),
		sessionTTL:    cmd.Duration("session-ttl"),
		ngrokEnabled:  cmd.Bool("ngrok"),
		ngrokAuth:     cmd.String("ngrok-auth"),
		ngrokDomain:   cmd.String("ngrok-domain"),
	}
}

// setupLogging configures logrus. Output stays on stderr so that the MCP
// stdio transport owns stdout.
func setupLogging(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// services bundles what initializeServices wires together.
type services struct {
	grid     service.GridService
	sessions *session.Manager
	layouts  *layout.Manager
}

// initializeServices wires session/layout managers and the grid service.
func initializeServices(cfg config) (*services, error) {
	layoutManager, err := layout.NewManager(cfg.layoutsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout manager: %w", err)
	}
	if cfg.defaultLayout != "" {
		if err := layoutManager.SetDefault(cfg.defaultLayout); err != nil {
			return nil, fmt.Errorf("failed to set default layout: %w", err)
		}
	}

	persistence, err := session.NewFilePersistence(cfg.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warnf("Failed to load persisted sessions: %v", err)
	}

	return &services{
		grid:     service.NewGridService(sessionManager, layoutManager, cfg.pathfinderOptions()...),
		sessions: sessionManager,
		layouts:  layoutManager,
	}, nil
}

// newHandler combines the REST API, WebSocket endpoint and the /mcp proxy.
func newHandler(svc service.GridService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(svc, hub)
	mcpClient := mcp.NewClient(baseURL)
	apiServer.Router().HandleFunc("/mcp", mcpHTTPHandler(mcpClient))
	return apiServer
}

// mcpHTTPHandler answers single JSON-RPC messages posted to /mcp.
func mcpHTTPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)
	log.Infof("Starting %s v%s", AppName, Version)

	svcs, err := initializeServices(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	addr := cfg.addr()
	handler := newHandler(svcs.grid, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svcs.sessions, cfg.sessionTTL)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if cfg.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveNgrok(ctx, cfg, handler); err != nil {
				log.Warnf("ngrok: %v", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown error: %v", err)
	}
	cancel()
	wg.Wait()

	if err := svcs.sessions.SaveAllSessions(); err != nil {
		log.Warnf("Failed to save sessions: %v", err)
	}
	log.Info("Server stopped")
	return nil
}

// serveNgrok exposes handler through an ngrok tunnel until ctx ends.
func serveNgrok(ctx context.Context, cfg config, handler http.Handler) error {
	if cfg.ngrokAuth == "" {
		return errors.New("enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.ngrokDomain))
		log.Infof("Using custom ngrok domain: %s", cfg.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.ngrokAuth))
	if err != nil {
		return fmt.Errorf("failed to start tunnel: %w", err)
	}

	ngrokURL := tun.URL()
	log.Infof("Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Ngrok tunnel closed")
	return nil
}

// sessionCleanupRoutine periodically evicts sessions that have not been
// accessed within ttl. Persisted copies stay on disk and reload on demand.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(cleanupInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// cleanupInterval checks a few times per ttl, at most once an hour.
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers /health; otherwise it starts an internal HTTP API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)

	baseURL := cfg.apiURL
	if !apiAvailable(ctx, baseURL) {
		log.Info("No external API server found, starting internal HTTP server")

		svcs, err := initializeServices(cfg)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svcs.grid, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Internal HTTP server error: %v", err)
			}
		}()
		defer func() {
			httpServer.Close()
			if err := svcs.sessions.SaveAllSessions(); err != nil {
				log.Warnf("Failed to save sessions: %v", err)
			}
		}()
	} else {
		log.Infof("External API server found at %s, using it for MCP", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Infof("MCP stdio server ready (API: %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func apiAvailable(ctx context.Context, baseURL string) bool {
	if baseURL == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runConsole starts the interactive editor, optionally on a loaded file.
func runConsole(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)

	opts := []console.Option{
		console.WithColour(!cmd.Bool("no-color") && console.IsTerminal(os.Stdout)),
		console.WithPathfinder(pathfinder.New(cfg.pathfinderOptions()...)),
	}
	if path := cmd.Args().First(); path != "" {
		g, err := snapshot.LoadFile(path)
		if err != nil {
			return err
		}
		opts = append(opts, console.WithGrid(g))
	}

	return console.New(os.Stdin, cmd.Root().Writer, opts...).Run(ctx)
}

// runSolve loads FILE, searches it and prints the rendered result.
func runSolve(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)
	out := cmd.Root().Writer

	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("solve: FILE is required", 2)
	}

	g, err := snapshot.LoadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("solve: %v", err), 1)
	}

	res, err := pathfinder.New(cfg.pathfinderOptions()...).FindPath(ctx, g)
	if err != nil {
		return cli.Exit(fmt.Sprintf("solve: %v", err), 1)
	}

	fmt.Fprint(out, console.Render(g, out == os.Stdout && console.IsTerminal(os.Stdout)))
	if res.Found {
		fmt.Fprintf(out, "Path found: %d steps (%d cells expanded)\n", res.Length, res.Expanded)
	} else {
		fmt.Fprintf(out, "No path exists (%d cells expanded)\n", res.Expanded)
	}

	if dest := cmd.String("out"); dest != "" {
		if err := snapshot.SaveFile(dest, g); err != nil {
			return cli.Exit(fmt.Sprintf("solve: %v", err), 1)
		}
		fmt.Fprintf(out, "Saved to %s\n", dest)
	}
	return nil
}
