package service

import (
	"database/sql"
	"errors"

	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/repository"
)

type AuthService struct {
	repos repository.Authorization
}

func NewAuthService(repos repository.Authorization) *AuthService {
	return &AuthService{
		repos: repos,
	}
}

// Login finds the user by email, creating the account on first contact.
func (s *AuthService) Login(input models.LoginInput) (models.User, error) {
	user, err := s.repos.GetUserByEmail(input.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, err
	}

	id, err := s.repos.CreateUser(models.User{
		Email:    input.Email,
		Name:     input.Name,
		Document: input.Document,
	})
	if err != nil {
		return models.User{}, err
	}
	return s.repos.GetUserByID(id)
}

func (s *AuthService) GetUserByID(id int64) (models.User, error) {
	return s.repos.GetUserByID(id)
}
