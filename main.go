// Package main our entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/chat"
	"github.com/johndosdos/tindahan/internal/config"
	"github.com/johndosdos/tindahan/internal/files"
	"github.com/johndosdos/tindahan/internal/handler"
	"github.com/johndosdos/tindahan/internal/ratelimiter"
	"github.com/johndosdos/tindahan/internal/store"
	"github.com/johndosdos/tindahan/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init DB
	log.Println("Initializing Database connection...")

	dbConn, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("could not connect to the postgresql database: %v", err)
	}

	_ = goose.SetDialect("postgres")
	dbForGoose := stdlib.OpenDBFromPool(dbConn)
	if err := goose.Up(dbForGoose, "sql/schema"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	if err := dbForGoose.Close(); err != nil {
		log.Fatalf("failed to release migration connection: %v", err)
	}

	db := store.NewWithPool(dbConn)

	// Init asset store
	assets, err := files.NewCloudinary(cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if err != nil {
		log.Fatalf("failed to init asset store: %v", err)
	}

	// Chat wiring: one registry per process, shared by the gateway
	// and the delivery engine.
	registry := ws.NewRegistry()
	authenticator := chat.NewAuthenticator(cfg.JWTSecret, db)
	chatSvc := chat.NewService(db, db, db, registry, authenticator)
	gateway := chat.NewGateway(registry, authenticator, chatSvc)

	authLimiter := ratelimiter.NewIPRateLimiter(10, time.Minute, ratelimiter.CleanupOpts{
		TTL:      10 * time.Minute,
		Interval: time.Minute,
	})
	defer authLimiter.Cancel()

	protect := func(h http.Handler) http.HandlerFunc {
		return auth.Middleware(h, cfg.JWTSecret)
	}

	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return authLimiter.Middleware(next)
			})
			r.Post("/register", handler.Register(db))
			r.Post("/login", handler.Login(db, cfg.JWTSecret, cfg.JWTExpiry))
		})

		r.Get("/users/me", protect(handler.Me(db)))
		r.Get("/users", protect(handler.ListUsers(db)))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handler.ListProducts(db))
			r.Get("/{id}", handler.GetProduct(db))
			r.Post("/", protect(handler.CreateProduct(db, assets)))
			r.Put("/{id}", protect(handler.UpdateProduct(db)))
			r.Put("/{id}/image", protect(handler.UpdateProductImage(db, assets)))
			r.Delete("/{id}", protect(handler.DeleteProduct(db, assets)))
		})

		r.Route("/groceries", func(r chi.Router) {
			r.Get("/", handler.ListGroceries(db))
			r.Get("/{id}", handler.GetGrocery(db))
			r.Post("/", protect(handler.CreateGrocery(db)))
			r.Put("/{id}", protect(handler.UpdateGrocery(db)))
			r.Delete("/{id}", protect(handler.DeleteGrocery(db)))
		})

		r.Route("/chats", func(r chi.Router) {
			r.Post("/", protect(handler.CreateChat(chatSvc)))
			r.Get("/", protect(handler.ListChats(chatSvc)))
			r.Get("/{id}", protect(handler.GetChat(chatSvc)))
			r.Get("/{id}/messages", protect(handler.ListChatMessages(chatSvc)))
			r.Delete("/{id}", protect(handler.DeleteChat(chatSvc)))
		})
	})

	// The socket connects without auth; every chat event authenticates
	// itself against the handshake Authorization header.
	r.Get("/ws", handler.ServeWs(gateway))

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		log.Printf("Server starting at 0.0.0.0:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutdown signal received; shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println(err)
	}

	// Close DB connection.
	dbConn.Close()

	log.Println("Server stopped")
}
