package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/service"
	"go.uber.org/zap"
)

// Materializer создаёт тренировки всех активных шаблонов
type Materializer interface {
	MaterializeAllActive(ctx context.Context, horizonDays int, alignToMonday bool) (service.MaterializeReport, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	materializer  Materializer
	interval      time.Duration
	horizonDays   int
	alignToMonday bool
	logger        *zap.Logger
	stopChan      chan struct{}
	done          chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(materializer Materializer, interval time.Duration, horizonDays int, alignToMonday bool, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		materializer:  materializer,
		interval:      interval,
		horizonDays:   horizonDays,
		alignToMonday: alignToMonday,
		logger:        logger,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runMaterializationTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего запуска
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

// runMaterializationTask периодически создаёт тренировки на горизонт вперёд
func (s *Scheduler) runMaterializationTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.materialize(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.materialize(ctx)
		case <-s.stopChan:
			s.logger.Info("Materialization task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Materialization task cancelled")
			return
		}
	}
}

func (s *Scheduler) materialize(ctx context.Context) {
	report, err := s.materializer.MaterializeAllActive(ctx, s.horizonDays, s.alignToMonday)
	if err != nil {
		// Ошибки отдельных дат не мешают остальным, поэтому только предупреждаем
		s.logger.Warn("Materialization finished with errors",
			zap.String("run_id", report.RunID),
			zap.Int("failed", report.Failed),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Automatic materialization completed",
		zap.String("run_id", report.RunID),
		zap.Int("created", report.Created),
	)
}
