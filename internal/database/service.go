package database

import (
	"context"
	"log/slog"
	"time"
)

// AuditService records predictions off the request path.
type AuditService struct {
	repo   *AuditRepository
	logger *slog.Logger
}

func NewAuditService(repo *AuditRepository, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record persists the audit asynchronously; failures are logged, never
// surfaced to the caller.
func (s *AuditService) Record(a Audit) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.Insert(ctx, &a); err != nil {
			s.logger.Warn("failed to record prediction audit",
				slog.String("request_id", a.RequestID),
				slog.String("error", err.Error()))
		}
	}()
}

// Recent proxies to the repository.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]Audit, error) {
	return s.repo.Recent(ctx, limit)
}

// RiskCounts proxies to the repository.
func (s *AuditService) RiskCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.RiskCounts(ctx)
}
