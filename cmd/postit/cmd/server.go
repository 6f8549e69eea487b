package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jmcleod/postit/api"
	"github.com/jmcleod/postit/prefs"
	"github.com/jmcleod/postit/ratelimit"
	"github.com/jmcleod/postit/storage"
	"github.com/jmcleod/postit/storage/memory"
	"github.com/jmcleod/postit/storage/postgres"
	"github.com/jmcleod/postit/token"
	"github.com/jmcleod/postit/tokencache"
)

var (
	port           int
	dataDir        string
	allowedOrigins []string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Post It server",
	Long: `Starts the HTTP server. Configuration comes from the environment
(a .env file is loaded when present):

  POSTIT_AUTH_SECRET    signing secret for long-lived auth tokens (required)
  POSTIT_ACCESS_SECRET  signing secret for short-lived access tokens (required)
  POSTIT_DATABASE_URL   postgres DSN; omit to run on in-memory storage
  POSTIT_REDIS_URL      redis URL for the session cache and preferences;
                        omit to use a local bolt file under --data-dir`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env is fine; the variables may come from the
		// real environment.
		_ = godotenv.Load()

		issuer, err := token.NewIssuer(os.Getenv("POSTIT_AUTH_SECRET"), os.Getenv("POSTIT_ACCESS_SECRET"))
		if err != nil {
			return fmt.Errorf("token secrets: %w", err)
		}
		verifier, err := token.NewVerifier(os.Getenv("POSTIT_AUTH_SECRET"), os.Getenv("POSTIT_ACCESS_SECRET"))
		if err != nil {
			return fmt.Errorf("token secrets: %w", err)
		}

		// The command context is never cancelled by cobra's Execute, so
		// derive one that ends when this command returns. Background
		// goroutines hang off it.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var store storage.Store
		if dsn := os.Getenv("POSTIT_DATABASE_URL"); dsn != "" {
			pg, err := postgres.NewFromDSN(ctx, dsn)
			if err != nil {
				return fmt.Errorf("opening postgres storage: %w", err)
			}
			defer pg.Close()
			store = pg
		} else {
			fmt.Println("POSTIT_DATABASE_URL not set, using in-memory storage")
			store = memory.New()
		}

		var (
			cache     tokencache.Cache
			prefStore prefs.Store
		)
		if redisURL := os.Getenv("POSTIT_REDIS_URL"); redisURL != "" {
			rc, err := tokencache.NewRedisCacheFromURL(ctx, redisURL)
			if err != nil {
				return fmt.Errorf("connecting to redis: %w", err)
			}
			defer rc.Close()
			cache = rc
			prefStore = prefs.NewRedisStore(rc.Client())
		} else {
			if err := os.MkdirAll(dataDir, 0o700); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			bc, err := tokencache.NewBoltCacheFromFile(dataDir+"/sessions.db", nil)
			if err != nil {
				return fmt.Errorf("opening session cache: %w", err)
			}
			defer bc.Close()
			cache = bc
			prefStore = prefs.NewMemoryStore()
		}

		limiter := ratelimit.NewDefault()
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					limiter.Sweep()
				}
			}
		}()

		a := api.New(store, cache, prefStore, issuer, verifier, api.WithRateLimiter(limiter))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d...\n", port)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for local persistent data")
	serverCmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", []string{"http://localhost:3000"}, "CORS allowed origins")
}
