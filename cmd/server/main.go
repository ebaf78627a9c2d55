package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/atlasjose/Bases-de-datos2/internal/config"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/report"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/stats"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/user"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
	api "github.com/atlasjose/Bases-de-datos2/internal/http"
	"github.com/atlasjose/Bases-de-datos2/internal/metrics"
	"github.com/atlasjose/Bases-de-datos2/internal/platform/database"
	jwtpkg "github.com/atlasjose/Bases-de-datos2/internal/platform/jwt"
	"github.com/atlasjose/Bases-de-datos2/internal/repository/postgres"
	"github.com/atlasjose/Bases-de-datos2/internal/worker"
)

// @title           Survey Platform API
// @version         1.0
// @description     Surveys with vote recording and consistent statistics
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	metrics.Register()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	surveyRepo := postgres.NewSurveyRepo(db)
	voteRepo := postgres.NewVoteRepo(db)
	statsRepo := postgres.NewStatsRepo(db)
	reportRepo := postgres.NewReportRepo(db)

	aggregator := stats.NewAggregator(statsRepo, logger)

	userSvc := user.NewService(userRepo)
	surveySvc := survey.NewService(surveyRepo, aggregator)
	voteSvc := vote.NewService(voteRepo, aggregator, cfg.VotePolicy)
	reportSvc := report.NewService(reportRepo)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, "")

	voteCh := make(chan worker.VoteEvent, 100)
	statsWorker := worker.NewStatsWorker(voteCh, aggregator, cfg.ReconcileInterval, logger)

	router := api.NewRouter(userSvc, surveySvc, voteSvc, reportSvc, jwtMgr, voteCh, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go statsWorker.Run(ctx)

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	logger.Info("server stopped")
}
