package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/speakloud"
)

// Ensure LoggingRuleService implements speakloud.RuleService.
var _ speakloud.RuleService = (*LoggingRuleService)(nil)

// LoggingRuleService wraps a RuleService, logging changes.
type LoggingRuleService struct {
	next   speakloud.RuleService
	logger *slog.Logger
}

// NewLoggingRuleService creates a new LoggingRuleService.
func NewLoggingRuleService(next speakloud.RuleService, logger *slog.Logger) *LoggingRuleService {
	return &LoggingRuleService{next: next, logger: logger}
}

func (s *LoggingRuleService) CreateRule(ctx context.Context, rule *speakloud.Rule) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create rule",
			"id", rule.ID,
			"pattern", rule.Pattern,
			"pattern_type", rule.PatternType,
			"extractor", rule.PreferredExtractor,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRule(ctx, rule)
}

func (s *LoggingRuleService) FindRuleByID(ctx context.Context, id string) (*speakloud.Rule, error) {
	return s.next.FindRuleByID(ctx, id)
}

func (s *LoggingRuleService) ListRules(ctx context.Context) (rules []*speakloud.Rule, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("list rules",
			"count", len(rules),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListRules(ctx)
}

func (s *LoggingRuleService) DeleteRule(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete rule",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteRule(ctx, id)
}
