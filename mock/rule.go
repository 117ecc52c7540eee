package mock

import (
	"context"

	"github.com/fwojciec/speakloud"
)

var _ speakloud.RuleService = (*RuleService)(nil)

// RuleService is a mock implementation of speakloud.RuleService.
type RuleService struct {
	CreateRuleFn   func(ctx context.Context, rule *speakloud.Rule) error
	FindRuleByIDFn func(ctx context.Context, id string) (*speakloud.Rule, error)
	ListRulesFn    func(ctx context.Context) ([]*speakloud.Rule, error)
	DeleteRuleFn   func(ctx context.Context, id string) error
}

func (s *RuleService) CreateRule(ctx context.Context, rule *speakloud.Rule) error {
	return s.CreateRuleFn(ctx, rule)
}

func (s *RuleService) FindRuleByID(ctx context.Context, id string) (*speakloud.Rule, error) {
	return s.FindRuleByIDFn(ctx, id)
}

func (s *RuleService) ListRules(ctx context.Context) ([]*speakloud.Rule, error) {
	return s.ListRulesFn(ctx)
}

func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	return s.DeleteRuleFn(ctx, id)
}
