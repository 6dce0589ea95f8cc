package dashboard

import (
	"log/slog"
	"time"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) GetSummary() (*Summary, error) {
	stats, err := s.repo.Stats()
	if err != nil {
		s.logger.Error("failed to build dashboard summary", "error", err)
		return nil, err
	}
	return &Summary{Stats: *stats, GeneratedAt: s.now().UTC()}, nil
}
