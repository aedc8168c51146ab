package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/repository"
	"github.com/noah-isme/ormawa-api/internal/service"
	"github.com/noah-isme/ormawa-api/pkg/config"
	"github.com/noah-isme/ormawa-api/pkg/database"
	"github.com/noah-isme/ormawa-api/pkg/logger"
	"github.com/noah-isme/ormawa-api/pkg/storage"
)

var rootCmd = &cobra.Command{
	Use:           "ormawa",
	Short:         "Operator tools for the ormawa API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	rootCmd.AddCommand(mediaCmd(), workItemsCmd(), cmsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ORMAWA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "", "actor recorded on writes (defaults to cli:<os user>)")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

// app holds what a command needs after the database is reachable.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	actor  *models.JWTClaims

	workItems  *service.WorkItemService
	siteConfig *service.SiteConfigService
	reconciler *service.MediaReconciler
}

func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	store, err := storage.NewLocalStorage(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return err
	}
	schema, err := service.DefaultConfigSchema()
	if err != nil {
		return err
	}

	workItemRepo := repository.NewWorkItemRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	a := &app{
		cfg:    cfg,
		logger: logr,
		actor:  operator(),
		workItems: service.NewWorkItemService(workItemRepo, repository.NewTaskRepository(db), repository.NewActivityLogRepository(db),
			repository.NewParticipantRepository(db), nil, nil, nil, logr, service.WorkItemConfig{}),
		siteConfig: service.NewSiteConfigService(repository.NewSiteConfigRepository(db), schema, nil, 0, nil, nil, logr),
		reconciler: service.NewMediaReconciler(mediaRepo, store, nil, logr, cfg.Media.PendingTTL, cfg.Media.ReconcileInterval),
	}
	return fn(ctx, a)
}

// operator is the elevated identity CLI commands act as.
func operator() *models.JWTClaims {
	id := viper.GetString("actor-id")
	if id == "" {
		id = "cli"
		if u, err := user.Current(); err == nil {
			id = "cli:" + u.Username
		}
	}
	return &models.JWTClaims{UserID: id, Role: models.RoleAdmin, FullName: "Operator CLI"}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
