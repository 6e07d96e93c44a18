package matching

import (
	"context"
	"fmt"
	"log/slog"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	ListAliases(ctx context.Context) (map[string]string, error)
	CreateAlias(ctx context.Context, rawPattern, merchant string) error
}

// Service owns the learned merchant aliases and hands out matchers that
// know about them.
type Service struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger
}

func NewService(repo Repository, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{repo: repo, cfg: cfg, logger: logger}
}

func (s *Service) Config() Config { return s.cfg }

// Matcher loads the learned aliases and returns a matcher using them.
// When the aliases can't be read it falls back to the built-in ones.
func (s *Service) Matcher(ctx context.Context) *Matcher {
	learned, err := s.repo.ListAliases(ctx)
	if err != nil {
		s.logger.Warn("loading merchant aliases failed", "error", err)
		learned = nil
	}

	return NewMatcher(s.cfg, NewNormalizer(learned))
}

// Learn remembers that a raw ledger description refers to merchant.
// Pairs that already normalize to the same text are not stored.
func (s *Service) Learn(ctx context.Context, rawDescription, merchant string) error {
	pattern, name := clean(rawDescription), clean(merchant)
	if pattern == "" || name == "" || pattern == name {
		return nil
	}

	if err := s.repo.CreateAlias(ctx, pattern, name); err != nil {
		return fmt.Errorf("learning alias %q: %w", pattern, err)
	}

	return nil
}
