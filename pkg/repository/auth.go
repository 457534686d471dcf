package repository

import (
	"github.com/jmoiron/sqlx"

	"thunderbet_pix_back/models"
)

type AuthPostgres struct {
	db *sqlx.DB
}

func NewAuthPostgres(db *sqlx.DB) *AuthPostgres {
	return &AuthPostgres{db: db}
}

func (r *AuthPostgres) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	query := `SELECT id, email, name, document, created_at FROM users WHERE email = $1`
	err := r.db.Get(&user, query, email)
	return user, err
}

func (r *AuthPostgres) GetUserByID(id int64) (models.User, error) {
	var user models.User
	query := `SELECT id, email, name, document, created_at FROM users WHERE id = $1`
	err := r.db.Get(&user, query, id)
	return user, err
}

func (r *AuthPostgres) CreateUser(user models.User) (int64, error) {
	var id int64
	query := `
        INSERT INTO users (email, name, document)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	err := r.db.QueryRow(
		query,
		user.Email,
		user.Name,
		user.Document,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	_, err = r.db.Exec(`INSERT INTO balances (user_id, amount) VALUES ($1, 0)`, id)
	return id, err
}
