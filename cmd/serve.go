package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/calcmaster/internal/auth"
	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/metrics"
	"github.com/abhisek/calcmaster/internal/server"
	"github.com/abhisek/calcmaster/internal/store"
)

const sessionPurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config and CALCMASTER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, dbPath, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info("opened database", "path", dbPath)

	m := metrics.New()
	svc, err := newServices(ctx, cfg, st, log, m)
	if err != nil {
		return err
	}
	defer svc.Close()

	authSvc := auth.NewService(st.UserRepo(), st.SessionRepo(), auth.Config{
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)

	go purgeSessions(ctx, st.SessionRepo(), log)

	handler := server.NewRouter(server.Deps{
		Quizzes:      svc.quizzes,
		Personalizer: svc.personalizer,
		Auth:         authSvc,
		Results:      st.ResultRepo(),
		Ping:         st.Ping,
		Metrics:      m,
		Log:          log,
		CORSOrigins:  cfg.Server.CORSOrigins,
		SessionTTL:   cfg.Auth.SessionTTL,
	})
	return server.New(cfg.Server, handler, log).Run(ctx)
}

// purgeSessions deletes expired sessions until ctx is done.
func purgeSessions(ctx context.Context, sessions store.SessionRepo, log *logging.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purge sessions failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("purged sessions", "count", n)
			}
		}
	}
}
