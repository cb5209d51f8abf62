package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

type PaymentProfileRepository struct {
	db DBTX
}

func NewPaymentProfileRepository(db DBTX) *PaymentProfileRepository {
	return &PaymentProfileRepository{db: db}
}

const paymentProfileColumns = `
	id, provider_id, active,
	api_login_id, transaction_key, signature_key, public_client_key,
	require_names, require_email, require_address, accepted_cards_json,
	created_at, updated_at
`

func (r *PaymentProfileRepository) FindByID(ctx context.Context, id uint64) (*entity.PaymentProfile, error) {
	query := `SELECT ` + paymentProfileColumns + ` FROM payment_profiles WHERE id = ?`

	profile := &entity.PaymentProfile{}
	err := scanPaymentProfile(r.db.QueryRowContext(ctx, query, id), profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *PaymentProfileRepository) FindActiveByProvider(ctx context.Context, providerID string) ([]*entity.PaymentProfile, error) {
	query := `
		SELECT ` + paymentProfileColumns + `
		FROM payment_profiles
		WHERE active = 1 AND provider_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*entity.PaymentProfile, 0)
	for rows.Next() {
		profile := &entity.PaymentProfile{}
		if err := scanPaymentProfile(rows, profile); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPaymentProfile(scan rowScanner, profile *entity.PaymentProfile) error {
	var acceptedCardsJSON string

	err := scan.Scan(
		&profile.ID,
		&profile.ProviderID,
		&profile.Active,
		&profile.APILoginID,
		&profile.TransactionKey,
		&profile.SignatureKey,
		&profile.PublicClientKey,
		&profile.RequireNames,
		&profile.RequireEmail,
		&profile.RequireAddress,
		&acceptedCardsJSON,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return err
	}

	acceptedCards, err := parseStrings(acceptedCardsJSON)
	if err != nil {
		return err
	}
	profile.AcceptedCards = acceptedCards

	return nil
}
