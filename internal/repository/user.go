package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/untangled/link-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	UpsertGoogleUser(ctx context.Context, params model.UpsertGoogleUserParams) (*model.User, error)
	UpdatePhoneNumber(ctx context.Context, id int64, phoneNumber string) error
}

type userRepo struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1
	`, normalizeEmail(email))
	return HandleNotFound(&user, err)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING *
	`, normalizeEmail(params.Email), params.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertGoogleUser inserts the user or, when the email is already taken,
// refreshes the stored provider refresh token. The phone number is only
// written when the existing row has none.
func (r *userRepo) UpsertGoogleUser(ctx context.Context, params model.UpsertGoogleUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (email, google_refresh_token, phone_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			google_refresh_token = EXCLUDED.google_refresh_token,
			phone_number = COALESCE(users.phone_number, EXCLUDED.phone_number),
			updated_at = NOW()
		RETURNING *
	`, normalizeEmail(params.Email), params.GoogleRefreshToken, params.PhoneNumber)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePhoneNumber backfills the phone number once; rows that already
// carry one are left untouched.
func (r *userRepo) UpdatePhoneNumber(ctx context.Context, id int64, phoneNumber string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			phone_number = $2,
			updated_at = NOW()
		WHERE id = $1 AND phone_number IS NULL
	`, id, phoneNumber)
	return err
}
