package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/anonchat/cliparse"
	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/mailer"
	"github.com/danielhkuo/anonchat/router"
	"github.com/danielhkuo/anonchat/store"
)

const (
	indexTimeout    = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	// Fail fast in production; elsewhere keep serving so the
	// diagnostic endpoints can explain what is wrong
	if err := dbconn.Validate(cfg.MongoURI); err != nil {
		if cfg.IsProduction() {
			return err
		}
		slog.Warn("MongoDB connection string is unusable; database routes will fail", "error", err)
	}

	// Nothing is dialed until the first request needs the database
	mgr := dbconn.New(dbconn.Settings{
		URI:                    cfg.MongoURI,
		Database:               cfg.DatabaseName,
		ServerSelectionTimeout: cfg.Tuning.ServerSelectionTimeout,
		SocketTimeout:          cfg.Tuning.SocketTimeout,
		ConnectTimeout:         cfg.Tuning.ConnectTimeout,
		HeartbeatInterval:      cfg.Tuning.HeartbeatInterval,
		MaxPoolSize:            cfg.Tuning.MaxPoolSize,
		AttemptTimeout:         cfg.Tuning.AttemptTimeout,
	})
	st := store.NewMongo(mgr)

	var mail mailer.Sender = mailer.Disabled{}
	if cfg.MailerEnabled() {
		mail = mailer.NewResend(cfg.ResendAPIKey, cfg.EmailFrom, cfg.BaseURL)
		slog.Info("Verification email enabled", "from", cfg.EmailFrom)
	} else {
		slog.Warn("RESEND_API_KEY not set; new accounts are verified without email")
	}

	server := &http.Server{
		Handler:           router.NewRouter(mgr, st, mail, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Start server
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Indexes are best effort: an unreachable database must not keep the
	// server from starting
	if mgr.ConfigErr() == nil {
		g.Go(func() error {
			ictx, cancel := context.WithTimeout(gctx, indexTimeout)
			defer cancel()
			if err := st.EnsureIndexes(ictx); err != nil {
				slog.Warn("Index creation failed; will serve without it", "error", err)
				return nil
			}
			slog.Info("Database indexes ready")
			return nil
		})
	}

	// Graceful shutdown on Ctrl-C, SIGTERM, or server failure
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(sctx)
		if cerr := mgr.Close(sctx); cerr != nil {
			slog.Warn("Database close failed", "error", cerr)
		}
		return err
	})

	err = g.Wait()
	slog.Info("Server closed")
	return err
}
