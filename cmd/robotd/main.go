// Command robotd serves the tabletop robot simulator.
//
// Modes:
//
//	server (default)  REST API, websocket stream and a POST /mcp endpoint
//	stdio-mcp         MCP over stdin/stdout, backed by a running API or an internal one
//
// Sessions idle for longer than -session-max-age are dropped. With -ngrok the
// HTTP handler is also published through an ngrok endpoint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/tabletop-robot/api"
	"github.com/wricardo/tabletop-robot/game/config"
	"github.com/wricardo/tabletop-robot/game/service"
	"github.com/wricardo/tabletop-robot/game/session"
	"github.com/wricardo/tabletop-robot/transport/mcp"
	"github.com/wricardo/tabletop-robot/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tabletop Robot Server"
)

const (
	cleanupInterval = time.Hour
	shutdownTimeout = 10 * time.Second
)

// serverConfig holds everything read from flags and the environment
type serverConfig struct {
	Mode          string
	Host          string
	Port          int
	ConfigDir     string
	SessionMaxAge time.Duration
	Debug         bool
	ShowVersion   bool
	Ngrok         ngrokSettings
}

// ngrokSettings configures the optional public tunnel
type ngrokSettings struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

func (c *serverConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// parseFlags reads args (without the program name). Environment variables
// fill in anything the flags leave unset.
func parseFlags(args []string, stderr io.Writer) (*serverConfig, error) {
	cfg := &serverConfig{}

	fs := flag.NewFlagSet("robotd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.Port, "port", 8080, "HTTP server port")
	fs.StringVar(&cfg.Host, "host", "localhost", "HTTP server host")
	fs.StringVar(&cfg.ConfigDir, "config-dir", envOr("CONFIG_DIR", "configs"), "directory of grid configurations (env CONFIG_DIR)")
	fs.DurationVar(&cfg.SessionMaxAge, "session-max-age", 24*time.Hour, "drop sessions idle for longer than this")
	fs.BoolVar(&cfg.Debug, "debug", false, "log file and line with every message")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print the version and exit")
	fs.BoolVar(&cfg.Ngrok.Enabled, "ngrok", false, "publish the server through ngrok (env NGROK_ENABLED)")
	fs.StringVar(&cfg.Ngrok.AuthToken, "ngrok-auth", "", "ngrok auth token (env NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
	fs.StringVar(&cfg.Ngrok.Domain, "ngrok-domain", "", "reserved ngrok domain (env NGROK_DOMAIN)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(stderr, "Usage: robotd [flags] [server|stdio-mcp]\n\n")
		fmt.Fprintf(stderr, "  server      HTTP API on -host:-port, /ws stream and POST /mcp (default)\n")
		fmt.Fprintf(stderr, "  stdio-mcp   MCP on stdin/stdout; aliases: mcp-stdio, mcp\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Mode = "server"
	if fs.NArg() > 0 {
		cfg.Mode = fs.Arg(0)
	}
	switch cfg.Mode {
	case "server", "http":
		cfg.Mode = "server"
	case "stdio-mcp", "mcp-stdio", "mcp":
		cfg.Mode = "stdio-mcp"
	default:
		return nil, fmt.Errorf("unknown mode %q, use server or stdio-mcp", cfg.Mode)
	}

	if env := os.Getenv("NGROK_ENABLED"); env == "true" || env == "1" {
		cfg.Ngrok.Enabled = true
	}
	if cfg.Ngrok.AuthToken == "" {
		cfg.Ngrok.AuthToken = envOr("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if cfg.Ngrok.Domain == "" {
		cfg.Ngrok.Domain = os.Getenv("NGROK_DOMAIN")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	if cfg.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, Version)
		return
	}

	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, cfg.Mode)

	robotService, sessionManager, err := initializeServices(cfg.ConfigDir)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupRoutine(ctx, sessionManager, cleanupInterval, cfg.SessionMaxAge)

	if cfg.Mode == "stdio-mcp" {
		err = runStdioMCP(ctx, cfg, robotService)
	} else {
		err = runHTTPServer(ctx, cfg, robotService)
	}
	if err != nil {
		log.Fatalf("%s: %v", cfg.Mode, err)
	}
}

// initializeServices wires the config manager, session manager and robot service.
func initializeServices(dir string) (service.RobotService, *session.Manager, error) {
	configManager, err := config.NewManager(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	def := configManager.GetDefault()
	log.Printf("Default grid: %s (%dx%d)", def.Name, def.Width, def.Height)

	sessionManager := session.NewManager()
	return service.NewRobotService(sessionManager, configManager), sessionManager, nil
}

// newHandler mounts the REST API at / and the MCP JSON-RPC endpoint at /mcp
func newHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(mcpClient.GetMCPServer().HandleMessage(r.Context(), body)); err != nil {
			log.Printf("[MCP] failed to write response: %v", err)
		}
	})
	return mux
}

// runHTTPServer serves until ctx is cancelled, then drains connections
func runHTTPServer(ctx context.Context, cfg *serverConfig, robotService service.RobotService) error {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	addr := cfg.addr()
	handler := newHandler(api.NewServer(robotService, hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s (REST /api, websocket /ws?session=<id>, MCP /mcp)", addr)
		errc <- httpServer.ListenAndServe()
	}()

	tunnelDone := make(chan struct{})
	go func() {
		defer close(tunnelDone)
		if cfg.Ngrok.Enabled {
			runNgrokTunnel(ctx, cfg.Ngrok, handler)
		}
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	<-tunnelDone
	log.Println("Server stopped")
	return nil
}

// runNgrokTunnel serves handler on an ngrok endpoint until ctx is cancelled
func runNgrokTunnel(ctx context.Context, settings ngrokSettings, handler http.Handler) {
	if settings.AuthToken == "" {
		log.Println("WARNING: ngrok enabled but no auth token set (-ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	endpoint := ngrokConfig.HTTPEndpoint()
	if settings.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	log.Printf("Ngrok tunnel established: %s", tun.URL())

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// sessionCleanupRoutine removes sessions idle for longer than maxAge every
// interval until ctx is cancelled.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// apiAvailable reports whether a robot API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP serves MCP over stdio. Tools call the API on -port when one is
// already running, otherwise an internal API on a random loopback port.
func runStdioMCP(ctx context.Context, cfg *serverConfig, robotService service.RobotService) error {
	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)

	if apiAvailable(baseURL) {
		log.Printf("Using running API at %s", baseURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to listen for internal API: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		internal := &http.Server{Handler: api.NewServer(robotService, hub)}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer internal.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Printf("Started internal API at %s", baseURL)
	}

	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}
