package service

import (
	"context"
	"log/slog"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/pkg/e"
)

type StatsService struct {
	stats  StatsRepository
	logger *slog.Logger
}

func NewStatsService(stats StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{stats: stats, logger: logger}
}

func (s *StatsService) GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DispatchStats, error) {
	if req.Minutes < 1 || req.Minutes > 1440 {
		return nil, e.ErrInvalidInput
	}

	byStatus, byCategory, err := s.stats.CountIncidents(ctx, req.Minutes)
	if err != nil {
		s.logger.Error("incident stats failed", slog.Any("error", err))
		return nil, err
	}
	unitsByStatus, err := s.stats.CountUnits(ctx)
	if err != nil {
		s.logger.Error("unit stats failed", slog.Any("error", err))
		return nil, err
	}

	return &domain.DispatchStats{
		IncidentsByStatus:   byStatus,
		IncidentsByCategory: byCategory,
		UnitsByStatus:       unitsByStatus,
		WindowMinutes:       req.Minutes,
	}, nil
}
