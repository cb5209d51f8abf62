package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

type ProviderLogRepository struct {
	db DBTX
}

func NewProviderLogRepository(db DBTX) *ProviderLogRepository {
	return &ProviderLogRepository{db: db}
}

const providerLogColumns = `
	id, purchase_request_key, provider_id, transaction_id,
	log_type, log_message, details_json, subscriber_id, log_date
`

func (r *ProviderLogRepository) Create(ctx context.Context, log *entity.ProviderLog) error {
	detailsJSON, err := serializeDetails(log.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO provider_logs (
			purchase_request_key, provider_id, transaction_id,
			log_type, log_message, details_json, subscriber_id, log_date
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		log.PurchaseRequestKey,
		log.ProviderID,
		log.TransactionID,
		log.LogType,
		log.LogMessage,
		detailsJSON,
		nullableStringValue(log.SubscriberID),
		log.LogDate,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = uint64(id)

	return nil
}

func (r *ProviderLogRepository) FindByTransactionID(ctx context.Context, transactionID string, logType string, providerID string) ([]*entity.ProviderLog, error) {
	query := `
		SELECT ` + providerLogColumns + `
		FROM provider_logs
		WHERE transaction_id = ? AND log_type = ? AND provider_id = ?
		ORDER BY log_date DESC
	`
	return r.list(ctx, query, transactionID, logType, providerID)
}

func (r *ProviderLogRepository) FindBySubscriberID(ctx context.Context, subscriberID string, providerID string) (*entity.ProviderLog, error) {
	query := `
		SELECT ` + providerLogColumns + `
		FROM provider_logs
		WHERE subscriber_id = ? AND provider_id = ?
		ORDER BY log_date DESC
		LIMIT 1
	`

	logs, err := r.list(ctx, query, subscriberID, providerID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return logs[0], nil
}

func (r *ProviderLogRepository) ListByRequestKey(ctx context.Context, requestKey string, providerID string) ([]*entity.ProviderLog, error) {
	query := `
		SELECT ` + providerLogColumns + `
		FROM provider_logs
		WHERE purchase_request_key = ? AND provider_id = ?
		ORDER BY log_date DESC
	`
	return r.list(ctx, query, requestKey, providerID)
}

func (r *ProviderLogRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.ProviderLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*entity.ProviderLog, 0)
	for rows.Next() {
		log := &entity.ProviderLog{}
		if err := scanProviderLog(rows, log); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

func scanProviderLog(scan rowScanner, log *entity.ProviderLog) error {
	var detailsJSON string
	var subscriberID sql.NullString

	err := scan.Scan(
		&log.ID,
		&log.PurchaseRequestKey,
		&log.ProviderID,
		&log.TransactionID,
		&log.LogType,
		&log.LogMessage,
		&detailsJSON,
		&subscriberID,
		&log.LogDate,
	)
	if err != nil {
		return err
	}

	log.SubscriberID = stringPtrFromNull(subscriberID)

	details, err := parseDetails(detailsJSON)
	if err != nil {
		return err
	}
	log.Details = details

	return nil
}
