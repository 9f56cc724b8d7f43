// main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"frontoffice/internal/api"
	"frontoffice/internal/backup"
	"frontoffice/internal/config"
	"frontoffice/internal/data"
	"frontoffice/internal/email"
	"frontoffice/internal/finance"
	"frontoffice/internal/logger"
	"frontoffice/internal/middleware"
	"frontoffice/internal/security"
	"frontoffice/internal/state"
)

const sessionSweepInterval = 5 * time.Minute

type App struct {
	addr          string
	mux           *http.ServeMux
	origin        string
	connections   sync.WaitGroup
	totalRequests int64
}

func main() {
	importFile := flag.String("import", "", "copy every collection from this JSON data file into the configured store, then exit")
	runBackup := flag.Bool("backup", false, "write a backup of the configured store, then exit")
	addUser := flag.String("add-user", "", "create a user with this email, then exit")
	password := flag.String("password", "", "password for -add-user")
	name := flag.String("name", "", "display name for -add-user")
	role := flag.String("role", "admin", "role for -add-user")
	flag.Parse()

	// Step 1: Setup configuration first
	config.LoadEnv()

	// Step 2: Setup logging
	if err := logger.SetupLogger(config.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	// Only NOW is logging safe to use!
	logger.LogInfo("Environment loaded. Logger ready.")
	config.LogCurrentEnvironment()

	settings, err := config.Load()
	if err != nil {
		logger.LogFatal("Invalid configuration: %v", err)
	}

	// Step 3: Open the store
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, settings)
	if err != nil {
		logger.LogFatal("Failed to open %s store: %v", settings.StorageBackend, err)
	}
	defer store.Close()

	// One-shot commands
	switch {
	case *importFile != "":
		if err := data.Copy(ctx, data.NewFileStore(*importFile), store); err != nil {
			logger.LogFatal("Import failed: %v", err)
		}
		logger.LogInfo("Imported %s into the %s store", *importFile, settings.StorageBackend)
		return
	case *runBackup:
		if _, err := backup.New(store, settings.BackupDirectory, settings.BackupRetentionDays).Run(ctx); err != nil {
			logger.LogFatal("Backup failed: %v", err)
		}
		return
	}

	// Step 4: Load state
	st, err := state.New(ctx, store)
	if err != nil {
		logger.LogFatal("Failed to load data: %v", err)
	}

	if *addUser != "" {
		if err := createUser(ctx, st, *addUser, *password, *name, *role); err != nil {
			logger.LogFatal("Failed to add user: %v", err)
		}
		return
	}

	// Step 5: Setup app
	sessions := security.NewSessions(st, settings.SessionTTL)
	server := api.NewServer(st, sessions, finance.NewAggregator(settings.PlayerSeasonYear))
	server.SecureCookies = settings.Environment != "dev"

	mux := http.NewServeMux()
	server.Routes(mux)

	app := &App{
		addr:   settings.Addr(),
		mux:    mux,
		origin: settings.AllowedOrigin,
	}

	// Step 6: Start background tasks
	go sessions.CleanExpiredSessions(ctx, sessionSweepInterval)
	go middleware.CleanLoginAttempts(ctx)
	backups := backup.New(store, settings.BackupDirectory, settings.BackupRetentionDays)
	backups.OnFailure = email.NewMailer(email.LoadEmailConfig()).BackupFailed
	backups.StartBackupRoutine(ctx)

	// Step 7: Serve until interrupted
	app.Run(ctx)
}

// openStore connects the backend named by STORAGE_BACKEND.
func openStore(ctx context.Context, s config.Settings) (data.Store, error) {
	switch s.StorageBackend {
	case config.BackendSQLite:
		return data.OpenSQL(ctx, data.DialectSQLite, s.DatabaseURL)
	case config.BackendMySQL:
		return data.OpenSQL(ctx, data.DialectMySQL, s.DatabaseURL)
	case config.BackendPostgres:
		return data.OpenSQL(ctx, data.DialectPostgres, s.DatabaseURL)
	default:
		logger.LogInfo("Using JSON data file %s", s.DataFile)
		return data.NewFileStore(s.DataFile), nil
	}
}

func createUser(ctx context.Context, st *state.State, email, password, name, role string) error {
	if password == "" {
		logger.LogWarn("No -password given for %s; the account cannot log in until one is set", email)
	}
	hash := ""
	if password != "" {
		var err error
		if hash, err = security.HashPassword(password); err != nil {
			return err
		}
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	u, err := st.AddUser(ctx, data.User{Name: name, Email: email, Password: hash, Role: role})
	if err != nil {
		return err
	}
	logger.LogInfo("Created user %s (%s) with role %s", u.Email, u.ID, u.Role)
	return nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) {
	srv := &http.Server{
		Addr:         a.addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.LogInfo("Listening on %s", a.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogFatal("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.LogInfo("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError("Shutdown: %v", err)
	}

	a.connections.Wait()
	logger.LogInfo("Stopped after %d requests", atomic.LoadInt64(&a.totalRequests))
}

// Handler assembles all middleware around the main mux
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	handler = withCustom404(a.mux, handler)
	handler = security.AddCORSHeaders(a.origin, handler)
	handler = a.trackConnections(handler)
	handler = withTimeout(handler, 25*time.Second)

	return handler
}

// Middleware: timeout handler
func withTimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, "Request timed out")
}

// Middleware: track active connections and total requests
func (a *App) trackConnections(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.connections.Add(1)
		atomic.AddInt64(&a.totalRequests, 1)
		defer a.connections.Done()

		h.ServeHTTP(w, r)
	})
}

// Middleware: custom 404 for requests no route matches. Handlers that answer
// 404 themselves keep their own body.
func withCustom404(mux *http.ServeMux, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			h.ServeHTTP(w, r)
			return
		}

		crw := &captureResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		h.ServeHTTP(crw, r)
		if crw.statusCode != http.StatusNotFound {
			return
		}

		logger.LogInfo("404 not found: %s", r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			middleware.WriteAPIError(w, r, http.StatusNotFound, "not_found", "No such endpoint", r.URL.Path)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`
			<html><body>
				<h1>404 - Page Not Found</h1>
				<p>Sorry, the page you requested was not found.</p>
				<a href="/info">Return to the summary</a>
			</body></html>
		`))
	})
}

// captureResponseWriter passes everything through except a 404, which it
// records and swallows so withCustom404 can answer instead.
type captureResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (crw *captureResponseWriter) WriteHeader(code int) {
	if crw.written {
		return
	}
	crw.statusCode = code
	crw.written = true
	if code != http.StatusNotFound {
		crw.ResponseWriter.WriteHeader(code)
	}
}

func (crw *captureResponseWriter) Write(b []byte) (int, error) {
	if !crw.written {
		crw.WriteHeader(http.StatusOK)
	}
	if crw.statusCode == http.StatusNotFound {
		return len(b), nil
	}
	return crw.ResponseWriter.Write(b)
}
