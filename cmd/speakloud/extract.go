package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fwojciec/speakloud"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	result, err := deps.Extractor.Extract(deps.Ctx, speakloud.ExtractionRequest{URL: c.URL})
	if c.Full && result != nil {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		if jerr := enc.Encode(result); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", speakloud.ErrorMessage(err))
		if result != nil {
			writeStatus(deps, result)
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Title:   %s\n", result.Title)
	if result.Author != "" {
		fmt.Fprintf(deps.Stdout, "Author:  %s\n", result.Author)
	}
	if result.PublishDate != "" {
		fmt.Fprintf(deps.Stdout, "Date:    %s\n", result.PublishDate)
	}
	fmt.Fprintf(deps.Stdout, "Source:  %s\n", result.Source)
	if result.UsedRuleID != "" {
		fmt.Fprintf(deps.Stdout, "Rule:    %s\n", result.UsedRuleID)
	}
	fmt.Fprintf(deps.Stdout, "Words:   %d (%d min)\n\n", result.WordCount, result.ReadingTimeMin)
	fmt.Fprintln(deps.Stdout, result.Text)
	return nil
}

// writeStatus prints the per-strategy outcome table.
func writeStatus(deps *Dependencies, result *speakloud.ExtractionResult) {
	names := make([]string, 0, len(result.ExtractStatus))
	for name := range result.ExtractStatus {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		line := fmt.Sprintf("  %-12s %s", name, result.ExtractStatus[name])
		if reason := result.Diagnostics[name]; reason != "" {
			line += ": " + reason
		}
		fmt.Fprintln(deps.Stderr, line)
	}
}
