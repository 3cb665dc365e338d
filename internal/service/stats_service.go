package service

import (
	"context"

	"donation-api/internal/apperror"
	"donation-api/internal/repository"
)

type StatsService interface {
	Impact(ctx context.Context) (*repository.ImpactCounters, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) Impact(ctx context.Context) (*repository.ImpactCounters, error) {
	counters, err := s.statsRepo.Impact(ctx)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	return &counters, nil
}
