package sqlite

import (
	"context"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
)

type grantsRepo struct {
	q querier
}

func (r *grantsRepo) GetGrantByAccount(ctx context.Context, accountID string) (domain.AdminGrant, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, account_id, role, created_at
		FROM admin_grants WHERE account_id = ?`, accountID)

	var g domain.AdminGrant
	var role string
	if err := row.Scan(&g.ID, &g.AccountID, &role, &g.CreatedAt); err != nil {
		return domain.AdminGrant{}, mapNotFound(err)
	}
	g.Role = domain.Role(role)
	return g, nil
}

func (r *grantsRepo) CreateGrant(ctx context.Context, g domain.AdminGrant) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO admin_grants (id, account_id, role, created_at)
		VALUES (?, ?, ?, ?)`,
		g.ID, g.AccountID, string(g.Role), g.CreatedAt.UTC())
	return mapConstraint(err)
}

func (r *grantsRepo) DeleteGrantByAccount(ctx context.Context, accountID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM admin_grants WHERE account_id = ?`, accountID)
	return err
}

func (r *grantsRepo) ListGrants(ctx context.Context) ([]domain.AdminGrant, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, account_id, role, created_at
		FROM admin_grants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.AdminGrant
	for rows.Next() {
		var g domain.AdminGrant
		var role string
		if err := rows.Scan(&g.ID, &g.AccountID, &role, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Role = domain.Role(role)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
