package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"thunderbet_pix_back/models"
)

type Authorization interface {
	GetUserByEmail(email string) (models.User, error)
	GetUserByID(id int64) (models.User, error)
	CreateUser(user models.User) (int64, error)
}

type Billing interface {
	GetBalance(userID int64) (models.Balance, error)
	CreateDeposit(userID int64, chargeID string, amount decimal.Decimal) (int64, error)
	UpdateDepositCode(chargeID, pixCode, qrCodeURL string) error
	ResolveDeposit(chargeID, status, errorMessage string) error
	ConfirmDepositPaid(chargeID string) error
	GetDeposits(userID int64) ([]models.Deposit, error)
	GetDepositByChargeID(chargeID string) (models.Deposit, error)
	CreateWithdrawal(userID int64, pixKey string, amount decimal.Decimal) (int64, error)
	GetWithdrawals(userID int64) ([]models.Withdrawal, error)
}

type Repository struct {
	Authorization
	Billing
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Authorization: NewAuthPostgres(db),
		Billing:       NewBillingPostgres(db),
	}
}
