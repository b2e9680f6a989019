package payments

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore implements Store on a shared database handle
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, userID, productID, amount int64) (*Payment, error) {
	var p Payment

	query := `
		INSERT INTO payments (user_id, product_id, amount, accepted)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, user_id, product_id, amount, accepted, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query, userID, productID, amount).Scan(
		&p.ID,
		&p.UserID,
		&p.ProductID,
		&p.Amount,
		&p.Accepted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return &p, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Payment, error) {
	var p Payment

	query := `SELECT id, user_id, product_id, amount, accepted, created_at, updated_at FROM payments WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.ProductID,
		&p.Amount,
		&p.Accepted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Payment, error) {
	query := `SELECT id, user_id, product_id, amount, accepted, created_at, updated_at FROM payments ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var result []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProductID, &p.Amount, &p.Accepted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, productID, amount int64) (*Payment, error) {
	var p Payment

	query := `
		UPDATE payments
		SET product_id = $1, amount = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING id, user_id, product_id, amount, accepted, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query, productID, amount, id).Scan(
		&p.ID,
		&p.UserID,
		&p.ProductID,
		&p.Amount,
		&p.Accepted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	return &p, nil
}

func (s *PostgresStore) SetAccepted(ctx context.Context, id int64, accepted bool) error {
	query := `UPDATE payments SET accepted = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, accepted, id)
	if err != nil {
		return fmt.Errorf("failed to update accepted flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}
