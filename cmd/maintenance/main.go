package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/streamer_booking/internal/app"
	"github.com/Freeeeeet/streamer_booking/internal/config"
	"github.com/Freeeeeet/streamer_booking/internal/repository"
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"go.uber.org/zap"
)

// Разовый запуск обслуживания, предназначен для внешнего cron
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg, "maintenance")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Maintenance finished with failures", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.NewPostgresPool(ctx, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	voucherService := service.NewVoucherService(repository.NewVoucherRepository(pool), logger)

	maintenance := app.NewMaintenance(logger,
		app.MaintenanceTask{Name: "deactivate_expired_vouchers", Run: voucherService.DeactivateExpired},
	)

	if failed := maintenance.RunOnce(ctx); failed > 0 {
		return fmt.Errorf("%d maintenance tasks failed", failed)
	}

	return nil
}
