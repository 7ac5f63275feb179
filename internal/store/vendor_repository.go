/**
 * @description
 * This file implements the data access layer for vendor records on PostgreSQL.
 * Writes are single-row statements scoped by both id and owner, so a row that
 * changed hands or vanished between read and write is reported as not found.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver and pool.
 * - github.com/jackc/pgx/v5/pgconn: For inspecting PostgreSQL error codes.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sumamakhan761/vendor-management/internal/domain"
)

const vendorColumns = `id, name, bank_account_no, bank_name, address_line1, address_line2, city, country, zip_code, user_id, created_at, updated_at`

// PostgresVendorRepository is the PostgreSQL implementation of VendorRepository.
type PostgresVendorRepository struct {
	db *pgxpool.Pool
}

// NewPostgresVendorRepository creates a new instance of PostgresVendorRepository.
func NewPostgresVendorRepository(db *pgxpool.Pool) *PostgresVendorRepository {
	return &PostgresVendorRepository{db: db}
}

// ListVendorsByUserID returns every vendor owned by userID, newest first.
func (r *PostgresVendorRepository) ListVendorsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	query := `
        SELECT ` + vendorColumns + `
        FROM vendors
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	vendors := make([]domain.Vendor, 0)
	for rows.Next() {
		var v domain.Vendor
		if err := scanVendor(rows, &v); err != nil {
			return nil, fmt.Errorf("failed to scan vendor row: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vendor rows: %w", err)
	}

	return vendors, nil
}

// CreateVendor inserts a new vendor and fills in the database-managed timestamps.
func (r *PostgresVendorRepository) CreateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	query := `
        INSERT INTO vendors (id, name, bank_account_no, bank_name, address_line1, address_line2, city, country, zip_code, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.BankAccountNo,
		vendor.BankName,
		vendor.AddressLine1,
		vendor.AddressLine2,
		vendor.City,
		vendor.Country,
		vendor.ZipCode,
		vendor.UserID,
	).Scan(&vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		if pgErr, ok := constraintViolation(err); ok {
			log.Printf("level=warn component=store msg=\"vendor insert violated constraint\" code=%s constraint=%s", pgErr.Code, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}
	return vendor, nil
}

// FindVendorByID loads a vendor regardless of owner so callers can tell
// "missing" apart from "not yours".
func (r *PostgresVendorRepository) FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`

	var v domain.Vendor
	if err := scanVendor(r.db.QueryRow(ctx, query, vendorID), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to find vendor: %w", err)
	}
	return &v, nil
}

// UpdateVendor overwrites the mutable fields of a vendor owned by vendor.UserID.
func (r *PostgresVendorRepository) UpdateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	query := `
        UPDATE vendors
        SET name = $3,
            bank_account_no = $4,
            bank_name = $5,
            address_line1 = $6,
            address_line2 = $7,
            city = $8,
            country = $9,
            zip_code = $10,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + vendorColumns

	var updated domain.Vendor
	err := scanVendor(r.db.QueryRow(ctx, query,
		vendor.ID,
		vendor.UserID,
		vendor.Name,
		vendor.BankAccountNo,
		vendor.BankName,
		vendor.AddressLine1,
		vendor.AddressLine2,
		vendor.City,
		vendor.Country,
		vendor.ZipCode,
	), &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		if pgErr, ok := constraintViolation(err); ok {
			log.Printf("level=warn component=store msg=\"vendor update violated constraint\" code=%s constraint=%s", pgErr.Code, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("failed to update vendor: %w", err)
	}
	return &updated, nil
}

// DeleteVendor permanently removes a vendor owned by userID.
func (r *PostgresVendorRepository) DeleteVendor(ctx context.Context, vendorID uuid.UUID, userID uuid.UUID) error {
	query := `
        DELETE FROM vendors
        WHERE id = $1 AND user_id = $2
    `
	result, err := r.db.Exec(ctx, query, vendorID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrVendorNotFound
	}
	return nil
}

func scanVendor(row pgx.Row, v *domain.Vendor) error {
	return row.Scan(
		&v.ID,
		&v.Name,
		&v.BankAccountNo,
		&v.BankName,
		&v.AddressLine1,
		&v.AddressLine2,
		&v.City,
		&v.Country,
		&v.ZipCode,
		&v.UserID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
}

// constraintViolation reports whether err is a PostgreSQL integrity constraint
// violation (SQLSTATE class 23).
func constraintViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return pgErr, true
	}
	return nil, false
}
