package database

import (
	"context"
	"fmt"

	"github.com/haytac/message-formatter/internal/formatter"
)

// ReplacementRuleStore provides methods for custom replacement rules.
type ReplacementRuleStore struct {
	db *DB
}

// NewReplacementRuleStore creates a new ReplacementRuleStore.
func NewReplacementRuleStore(db *DB) *ReplacementRuleStore {
	return &ReplacementRuleStore{db: db}
}

// CreateRule validates the rule's pattern and stores it.
func (s *ReplacementRuleStore) CreateRule(ctx context.Context, r *ReplacementRule) (int64, error) {
	return insertRule(ctx, s.db, r)
}

func insertRule(ctx context.Context, ex execer, r *ReplacementRule) (int64, error) {
	if _, err := formatter.CompilePattern(r.Pattern); err != nil {
		return 0, fmt.Errorf("CreateRule: %w", err)
	}
	res, err := ex.ExecContext(ctx, `INSERT INTO replacement_rules (position, pattern, template) VALUES (?, ?, ?)`,
		r.Position, r.Pattern, r.Template)
	if err != nil {
		return 0, fmt.Errorf("CreateRule exec: %w", err)
	}
	return res.LastInsertId()
}

// ListRules retrieves all rules in application order.
func (s *ReplacementRuleStore) ListRules(ctx context.Context) ([]*ReplacementRule, error) {
	query := `SELECT id, position, pattern, template, created_at, updated_at FROM replacement_rules ORDER BY position, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListRules query: %w", err)
	}
	defer rows.Close()

	var rules []*ReplacementRule
	for rows.Next() {
		r := &ReplacementRule{}
		if err := rows.Scan(&r.ID, &r.Position, &r.Pattern, &r.Template, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListRules scan: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRules rows error: %w", err)
	}
	return rules, nil
}

// DeleteRule removes a rule by ID.
func (s *ReplacementRuleStore) DeleteRule(ctx context.Context, id int64) error {
	return deleteOne(ctx, s.db, "DeleteRule", `DELETE FROM replacement_rules WHERE id = ?`, id)
}
