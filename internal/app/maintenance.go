package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MaintenanceTask одна задача обслуживания
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Maintenance выполняет задачи обслуживания один раз; периодичность задаёт внешний cron
type Maintenance struct {
	tasks  []MaintenanceTask
	logger *zap.Logger
}

// NewMaintenance создаёт набор задач
func NewMaintenance(logger *zap.Logger, tasks ...MaintenanceTask) *Maintenance {
	return &Maintenance{
		tasks:  tasks,
		logger: logger,
	}
}

// RunOnce запускает все задачи по очереди. Ошибка одной задачи не останавливает остальные;
// возвращается число упавших задач.
func (m *Maintenance) RunOnce(ctx context.Context) int {
	failed := 0

	for _, task := range m.tasks {
		if ctx.Err() != nil {
			m.logger.Info("Maintenance cancelled", zap.String("task", task.Name))
			return failed + 1
		}

		start := time.Now()
		affected, err := task.Run(ctx)
		if err != nil {
			failed++
			m.logger.Error("Maintenance task failed", zap.String("task", task.Name), zap.Error(err))
			continue
		}

		m.logger.Info("Maintenance task completed",
			zap.String("task", task.Name),
			zap.Int64("affected", affected),
			zap.Duration("took", time.Since(start)),
		)
	}

	return failed
}
