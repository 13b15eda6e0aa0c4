package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/edunest/admin-ledger/internal/domain"
)

const operatorColumns = `id, email, name, password_hash, role, created_at`

// OperatorRepository reads dashboard operator accounts. Operators are
// provisioned out of band; the gateway only authenticates them.
type OperatorRepository struct {
	db *sql.DB
}

func NewOperatorRepository(db *sql.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id,
	)
	op, err := scanOperator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return op, nil
}

func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE email = $1`, email,
	)
	op, err := scanOperator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return op, nil
}

func scanOperator(s scanner) (*domain.Operator, error) {
	var op domain.Operator
	err := s.Scan(
		&op.ID, &op.Email, &op.Name, &op.PasswordHash,
		&op.Role, &op.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}
