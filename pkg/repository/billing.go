package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"thunderbet_pix_back/models"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type BillingPostgres struct {
	db *sqlx.DB
}

func NewBillingPostgres(db *sqlx.DB) *BillingPostgres {
	return &BillingPostgres{db: db}
}

func (r *BillingPostgres) GetBalance(userID int64) (models.Balance, error) {
	var balance models.Balance
	query := `SELECT id, user_id, amount, updated_at FROM balances WHERE user_id = $1`
	err := r.db.Get(&balance, query, userID)
	return balance, err
}

func (r *BillingPostgres) CreateDeposit(userID int64, chargeID string, amount decimal.Decimal) (int64, error) {
	var id int64
	query := `
        INSERT INTO deposits (user_id, charge_id, amount, status)
        VALUES ($1, $2, $3, 'created')
        RETURNING id
    `
	err := r.db.QueryRow(query, userID, chargeID, amount).Scan(&id)
	return id, err
}

func (r *BillingPostgres) UpdateDepositCode(chargeID, pixCode, qrCodeURL string) error {
	query := `
        UPDATE deposits
        SET pix_code = $2, qr_code_url = $3, status = 'awaiting_payment'
        WHERE charge_id = $1 AND resolved_at IS NULL
    `
	_, err := r.db.Exec(query, chargeID, pixCode, qrCodeURL)
	return err
}

func (r *BillingPostgres) ResolveDeposit(chargeID, status, errorMessage string) error {
	query := `
        UPDATE deposits
        SET status = $2, error_message = NULLIF($3, ''), resolved_at = now()
        WHERE charge_id = $1 AND resolved_at IS NULL
    `
	_, err := r.db.Exec(query, chargeID, status, errorMessage)
	return err
}

// ConfirmDepositPaid marks a deposit paid and credits the user's balance in
// one transaction. The status guard makes it idempotent: a second call for
// the same charge credits nothing.
func (r *BillingPostgres) ConfirmDepositPaid(chargeID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin confirm deposit tx")
	}
	defer tx.Rollback()

	var deposit models.Deposit
	query := `
        UPDATE deposits
        SET status = 'paid', resolved_at = now()
        WHERE charge_id = $1 AND status <> 'paid'
        RETURNING id, user_id, amount
    `
	err = tx.QueryRow(query, chargeID).Scan(&deposit.ID, &deposit.UserID, &deposit.Amount)
	if err == sql.ErrNoRows {
		// Already confirmed by an earlier poll tick.
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "mark deposit paid")
	}

	_, err = tx.Exec(
		`UPDATE balances SET amount = amount + $2, updated_at = now() WHERE user_id = $1`,
		deposit.UserID, deposit.Amount,
	)
	if err != nil {
		return errors.Wrap(err, "credit balance")
	}

	return tx.Commit()
}

func (r *BillingPostgres) GetDeposits(userID int64) ([]models.Deposit, error) {
	var deposits []models.Deposit
	query := `
        SELECT id, user_id, charge_id, amount, COALESCE(pix_code, '') AS pix_code,
               COALESCE(qr_code_url, '') AS qr_code_url, status, error_message,
               created_at, resolved_at
        FROM deposits
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	err := r.db.Select(&deposits, query, userID)
	return deposits, err
}

func (r *BillingPostgres) GetDepositByChargeID(chargeID string) (models.Deposit, error) {
	var deposit models.Deposit
	query := `
        SELECT id, user_id, charge_id, amount, COALESCE(pix_code, '') AS pix_code,
               COALESCE(qr_code_url, '') AS qr_code_url, status, error_message,
               created_at, resolved_at
        FROM deposits
        WHERE charge_id = $1
    `
	err := r.db.Get(&deposit, query, chargeID)
	return deposit, err
}

// CreateWithdrawal debits the balance and records a pending withdrawal in
// one transaction. Fails with ErrInsufficientBalance when the debit would
// go negative.
func (r *BillingPostgres) CreateWithdrawal(userID int64, pixKey string, amount decimal.Decimal) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "begin withdrawal tx")
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE balances SET amount = amount - $2, updated_at = now() WHERE user_id = $1 AND amount >= $2`,
		userID, amount,
	)
	if err != nil {
		return 0, errors.Wrap(err, "debit balance")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrInsufficientBalance
	}

	var id int64
	query := `
        INSERT INTO withdrawals (user_id, pix_key, amount, status)
        VALUES ($1, $2, $3, 'pending')
        RETURNING id
    `
	if err := tx.QueryRow(query, userID, pixKey, amount).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert withdrawal")
	}

	return id, tx.Commit()
}

func (r *BillingPostgres) GetWithdrawals(userID int64) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	query := `
        SELECT id, user_id, pix_key, amount, status, created_at
        FROM withdrawals
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	err := r.db.Select(&withdrawals, query, userID)
	return withdrawals, err
}
