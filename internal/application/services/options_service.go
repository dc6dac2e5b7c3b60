package services

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lottery-system/backend/internal/domain/entities"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
	"github.com/lottery-system/backend/internal/ports"
)

// OptionsService keeps the persisted options and an in-memory copy of the
// last value loaded or saved.
type OptionsService struct {
	repo   ports.OptionsRepository
	logger *logger.Logger

	mu     sync.Mutex
	cached *entities.LotteryOptions

	savesTotal *prometheus.CounterVec
}

// NewOptionsService creates a new options service and seeds its cache from
// the repository.
func NewOptionsService(ctx context.Context, repo ports.OptionsRepository, logger *logger.Logger) *OptionsService {
	s := &OptionsService{
		repo:   repo,
		logger: logger.WithComponent("options_service"),
		cached: repo.Load(ctx),
		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lottery_options_saves_total",
				Help: "Total number of options save attempts",
			},
			[]string{"result"},
		),
	}

	s.logger.Infow("Options store ready", "path", repo.Path(), "loaded", s.cached != nil)
	return s
}

// Save writes the options to disk and, once the write succeeded, replaces
// the cached copy. A failed write leaves the cache as it was.
func (s *OptionsService) Save(ctx context.Context, options *entities.LotteryOptions) error {
	if options == nil {
		return entities.ErrOptionsRequired
	}
	next := options.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.repo.Save(ctx, next)
	s.logger.LogStorageWrite(s.repo.Path(), float64(time.Since(start).Microseconds())/1000, err)
	if err != nil {
		s.savesTotal.WithLabelValues("error").Inc()
		return err
	}

	s.cached = next
	s.savesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Get returns a copy of the cached options. It never touches disk.
func (s *OptionsService) Get(ctx context.Context) (*entities.LotteryOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return nil, false
	}
	return s.cached.Clone(), true
}

// Loaded reports whether the cache holds a value
func (s *OptionsService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached != nil
}

// Path returns the storage path
func (s *OptionsService) Path() string {
	return s.repo.Path()
}

// Collectors returns the service's Prometheus collectors
func (s *OptionsService) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.savesTotal}
}
