package service

import (
	"errors"

	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/utils"
)

var ErrWithdrawBelowMinimum = errors.New("withdrawal amount below minimum")

// Withdraw debits the balance and queues a pending withdrawal for manual
// processing. The withdrawal minimum is configured independently of the
// deposit minimum.
func (s *BillingService) Withdraw(user models.User, input models.WithdrawInput) (int64, error) {
	if input.Amount.LessThan(s.cfg.WithdrawMinimum) {
		return 0, ErrWithdrawBelowMinimum
	}

	id, err := s.repos.CreateWithdrawal(user.ID, input.PixKey, input.Amount)
	if err != nil {
		return 0, err
	}

	go utils.NotifyWithdrawalRequested(user.Email, input.Amount, input.PixKey)
	return id, nil
}

func (s *BillingService) Withdrawals(userID int64) ([]models.Withdrawal, error) {
	return s.repos.GetWithdrawals(userID)
}
