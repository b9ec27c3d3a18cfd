package model

import "time"

// User is the durable identity record. Email is unique and stored
// case-folded. PhoneNumber is backfilled once by link consumption and
// never overwritten afterwards.
type User struct {
	ID                 int64      `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       *string    `db:"password_hash" json:"-"`
	PhoneNumber        *string    `db:"phone_number" json:"phoneNumber,omitempty"`
	GoogleRefreshToken *string    `db:"google_refresh_token" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          *time.Time `db:"updated_at" json:"-"`
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
}

// UpsertGoogleUserParams drives the insert-or-update-on-conflict write
// performed by the Google callback. The refresh token is always
// refreshed; the phone number is only written when non-nil.
type UpsertGoogleUserParams struct {
	Email              string
	GoogleRefreshToken string
	PhoneNumber        *string
}
