package main

import (
	"fmt"

	"github.com/fwojciec/speakloud"
)

// Run executes the rules add command.
func (c *RulesAddCmd) Run(deps *Dependencies) error {
	rule := &speakloud.Rule{
		Pattern:            c.Pattern,
		PatternType:        speakloud.PatternType(c.Type),
		PreferredExtractor: c.Extractor,
		Description:        c.Description,
		CreatedBy:          c.CreatedBy,
	}
	if err := deps.Rules.CreateRule(deps.Ctx, rule); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", speakloud.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added rule %s: %s %s → %s\n", rule.ID, rule.PatternType, rule.Pattern, rule.PreferredExtractor)
	return nil
}

// Run executes the rules list command.
func (c *RulesListCmd) Run(deps *Dependencies) error {
	rules, err := deps.Rules.ListRules(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", speakloud.ErrorMessage(err))
		return err
	}

	if len(rules) == 0 {
		fmt.Fprintln(deps.Stdout, "No rules found. Use 'speakloud rules add' to create one.")
		return nil
	}

	for _, r := range rules {
		fmt.Fprintf(deps.Stdout, "%s  %-10s  %s  %s", r.ID, r.PatternType, r.Pattern, r.PreferredExtractor)
		if r.Description != "" {
			fmt.Fprintf(deps.Stdout, "  (%s)", r.Description)
		}
		fmt.Fprintln(deps.Stdout)
	}
	return nil
}

// Run executes the rules delete command.
func (c *RulesDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return speakloud.Errorf(speakloud.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Rules.DeleteRule(deps.Ctx, c.ID); err != nil {
		if speakloud.ErrorCode(err) == speakloud.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: rule %q not found. Use 'speakloud rules list' to see available rules.\n", c.ID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", speakloud.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted rule %s\n", c.ID)
	return nil
}
