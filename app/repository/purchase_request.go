package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

var ErrPurchaseRequestAlreadyExists = errors.New("purchase request already exists")

type PurchaseRequestRepository struct {
	db DBTX
}

func NewPurchaseRequestRepository(db DBTX) *PurchaseRequestRepository {
	return &PurchaseRequestRepository{db: db}
}

const purchaseRequestColumns = `
	id, request_key, payment_profile_id, user_id,
	cost_amount, cost_currency, title, recurring,
	length_amount, length_unit, return_url, created_at
`

func (r *PurchaseRequestRepository) Create(ctx context.Context, request *entity.PurchaseRequest) error {
	query := `
		INSERT INTO purchase_requests (
			request_key, payment_profile_id, user_id,
			cost_amount, cost_currency, title, recurring,
			length_amount, length_unit, return_url, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		request.RequestKey,
		request.PaymentProfileID,
		request.UserID,
		request.CostAmount,
		request.CostCurrency,
		request.Title,
		request.Recurring,
		nullableIntValue(request.LengthAmount),
		nullableStringValue(request.LengthUnit),
		request.ReturnURL,
		request.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPurchaseRequestAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	request.ID = uint64(id)

	return nil
}

func (r *PurchaseRequestRepository) FindByRequestKey(ctx context.Context, requestKey string) (*entity.PurchaseRequest, error) {
	query := `SELECT ` + purchaseRequestColumns + ` FROM purchase_requests WHERE request_key = ?`
	return r.findOne(ctx, query, requestKey)
}

// FindByIDAndProfile looks a purchase request up by invoice number, scoped
// to the payment profile that matched the webhook signature.
func (r *PurchaseRequestRepository) FindByIDAndProfile(ctx context.Context, id uint64, paymentProfileID uint64) (*entity.PurchaseRequest, error) {
	query := `SELECT ` + purchaseRequestColumns + ` FROM purchase_requests WHERE id = ? AND payment_profile_id = ?`
	return r.findOne(ctx, query, id, paymentProfileID)
}

func (r *PurchaseRequestRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.PurchaseRequest, error) {
	request := &entity.PurchaseRequest{}
	err := scanPurchaseRequest(r.db.QueryRowContext(ctx, query, args...), request)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

func scanPurchaseRequest(scan rowScanner, request *entity.PurchaseRequest) error {
	var lengthAmount sql.NullInt64
	var lengthUnit sql.NullString

	err := scan.Scan(
		&request.ID,
		&request.RequestKey,
		&request.PaymentProfileID,
		&request.UserID,
		&request.CostAmount,
		&request.CostCurrency,
		&request.Title,
		&request.Recurring,
		&lengthAmount,
		&lengthUnit,
		&request.ReturnURL,
		&request.CreatedAt,
	)
	if err != nil {
		return err
	}

	request.LengthAmount = intPtrFromNull(lengthAmount)
	request.LengthUnit = stringPtrFromNull(lengthUnit)

	return nil
}
