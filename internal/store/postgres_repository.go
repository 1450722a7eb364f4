/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains the SQL queries for the unit/tenant/property
 * lookups and the reconciliation transaction that records a rent payment.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kejaniverse/payment-service/internal/domain"
)

var (
	ErrUnitNotFound     = errors.New("unit not found")
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrUnitNotOccupied  = errors.New("unit is not occupied")
	ErrDuplicatePayment = errors.New("payment reference already recorded")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindUnitByID retrieves a unit by its 6-character identifier.
func (r *PostgresRepository) FindUnitByID(ctx context.Context, unitID string) (*domain.Unit, error) {
	var unit domain.Unit
	query := `SELECT id, unit_name, occupied, property_id FROM units WHERE id = $1`
	err := r.db.QueryRow(ctx, query, unitID).Scan(&unit.ID, &unit.UnitName, &unit.Occupied, &unit.PropertyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// FindTenantByUnitID retrieves the tenant currently assigned to a unit.
// Tenants who have moved out are excluded.
func (r *PostgresRepository) FindTenantByUnitID(ctx context.Context, unitID string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	query := `
		SELECT id, first_name, last_name, email, phone_number, cumulative_rent_paid, unit_id, move_out_date
		FROM tenants
		WHERE unit_id = $1 AND move_out_date IS NULL
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, unitID).Scan(
		&tenant.ID,
		&tenant.FirstName,
		&tenant.LastName,
		&tenant.Email,
		&tenant.PhoneNumber,
		&tenant.CumulativeRentPaid,
		&tenant.UnitID,
		&tenant.MoveOutDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindPropertyByUnitID resolves the property a unit belongs to, including the
// gateway subaccount code used to route settlement funds to the landlord.
func (r *PostgresRepository) FindPropertyByUnitID(ctx context.Context, unitID string) (*domain.Property, error) {
	var property domain.Property
	query := `
		SELECT p.id, p.name, p.subaccount_code
		FROM properties p
		JOIN units u ON u.property_id = p.id
		WHERE u.id = $1
	`
	err := r.db.QueryRow(ctx, query, unitID).Scan(&property.ID, &property.Name, &property.SubaccountCode)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

// RecordRentPayment executes the reconciliation transaction for a verified
// charge event. All reads and writes happen inside one database transaction
// so that a business-rule failure (unit vacated, tenant missing) leaves no
// partial state behind. The payment insert uses the gateway reference as the
// primary key with ON CONFLICT DO NOTHING; inserting zero rows means the
// event was already processed and the transaction is abandoned without
// touching the tenant's running total.
func (r *PostgresRepository) RecordRentPayment(ctx context.Context, params RecordRentPaymentParams) (*domain.Payment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var occupied bool
	err = tx.QueryRow(ctx, `SELECT occupied FROM units WHERE id = $1 FOR UPDATE`, params.UnitID).Scan(&occupied)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	if !occupied {
		return nil, ErrUnitNotOccupied
	}

	var tenantID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM tenants WHERE unit_id = $1 AND move_out_date IS NULL LIMIT 1`,
		params.UnitID,
	).Scan(&tenantID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	insert := `
		INSERT INTO payments (reference_number, amount, paid_at, payment_method, payment_reference, unit_id, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (reference_number) DO NOTHING
	`
	result, err := tx.Exec(ctx, insert,
		params.ReferenceNumber,
		params.Amount,
		params.PaidAt,
		params.PaymentMethod,
		params.PaymentReference,
		params.UnitID,
		tenantID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrDuplicatePayment
	}

	_, err = tx.Exec(ctx,
		`UPDATE tenants SET cumulative_rent_paid = cumulative_rent_paid + $1 WHERE id = $2`,
		params.Amount, tenantID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.Payment{
		ReferenceNumber:  params.ReferenceNumber,
		Amount:           params.Amount,
		PaidAt:           params.PaidAt,
		PaymentMethod:    params.PaymentMethod,
		PaymentReference: params.PaymentReference,
		UnitID:           params.UnitID,
		TenantID:         &tenantID,
	}, nil
}

// ListPaymentsByUnitID returns the recorded payments for a unit, most recent first.
func (r *PostgresRepository) ListPaymentsByUnitID(ctx context.Context, unitID string) ([]domain.Payment, error) {
	query := `
		SELECT reference_number, amount, paid_at, payment_method, payment_reference, unit_id, tenant_id
		FROM payments
		WHERE unit_id = $1
		ORDER BY paid_at DESC
	`
	rows, err := r.db.Query(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ReferenceNumber,
			&p.Amount,
			&p.PaidAt,
			&p.PaymentMethod,
			&p.PaymentReference,
			&p.UnitID,
			&p.TenantID,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetTenantRentSummary returns a tenant's rent position for the dashboard.
func (r *PostgresRepository) GetTenantRentSummary(ctx context.Context, tenantID uuid.UUID) (*domain.TenantRentSummary, error) {
	var summary domain.TenantRentSummary
	query := `
		SELECT t.id, t.first_name, t.last_name, t.unit_id, t.cumulative_rent_paid,
		       (SELECT COUNT(*) FROM payments p WHERE p.tenant_id = t.id)
		FROM tenants t
		WHERE t.id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&summary.TenantID,
		&summary.FirstName,
		&summary.LastName,
		&summary.UnitID,
		&summary.CumulativeRentPaid,
		&summary.PaymentCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). ON CONFLICT covers the common path; this guards
// the race where the conflict target is hit through another code path.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
