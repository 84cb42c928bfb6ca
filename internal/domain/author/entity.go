// internal/domain/author/entity.go
package author

import "time"

// Author is the one-to-one profile extension of a user.
type Author struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	Bio            *string   `json:"bio" db:"bio"`
	ProfilePicture *string   `json:"profile_picture" db:"profile_picture"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
