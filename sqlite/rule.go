package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/speakloud"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ speakloud.RuleService = (*RuleService)(nil)

// RuleService implements speakloud.RuleService using SQLite.
type RuleService struct {
	db  *DB
	now func() time.Time
}

// NewRuleService creates a new RuleService.
func NewRuleService(db *DB) *RuleService {
	return &RuleService{db: db, now: time.Now}
}

const ruleColumns = "id, pattern, pattern_type, preferred_extractor, description, created_at, created_by"

// CreateRule creates a new rule. The pattern is stored lowercased for
// domain rules. Returns ECONFLICT if a rule with the same pattern and
// pattern type exists.
func (s *RuleService) CreateRule(ctx context.Context, rule *speakloud.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	rule.Pattern = strings.TrimSpace(rule.Pattern)
	if rule.PatternType == speakloud.PatternDomain {
		rule.Pattern = speakloud.NormalizeHost(rule.Pattern)
	}
	rule.PreferredExtractor = speakloud.CanonicalStrategy(rule.PreferredExtractor)

	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM extraction_rules WHERE pattern = ? AND pattern_type = ?
	`, rule.Pattern, rule.PatternType).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return speakloud.Errorf(speakloud.ECONFLICT, "rule for %s %q already exists", rule.PatternType, rule.Pattern)
	}

	rule.ID = uuid.New().String()
	rule.CreatedAt = s.now().UTC().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extraction_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rule.ID, rule.Pattern, string(rule.PatternType), rule.PreferredExtractor, rule.Description,
		rule.CreatedAt.Format(time.RFC3339), rule.CreatedBy)

	return err
}

// FindRuleByID retrieves a rule by ID.
func (s *RuleService) FindRuleByID(ctx context.Context, id string) (*speakloud.Rule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM extraction_rules WHERE id = ?`, id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, speakloud.Errorf(speakloud.ENOTFOUND, "rule not found")
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns all rules, oldest first.
func (s *RuleService) ListRules(ctx context.Context) ([]*speakloud.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM extraction_rules
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*speakloud.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// DeleteRule permanently removes a rule.
func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM extraction_rules WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return speakloud.Errorf(speakloud.ENOTFOUND, "rule not found")
	}

	return nil
}

func scanRule(row scanner) (*speakloud.Rule, error) {
	var rule speakloud.Rule
	var patternType, createdAt string

	if err := row.Scan(&rule.ID, &rule.Pattern, &patternType, &rule.PreferredExtractor,
		&rule.Description, &createdAt, &rule.CreatedBy); err != nil {
		return nil, err
	}
	rule.PatternType = speakloud.PatternType(patternType)

	var err error
	rule.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
