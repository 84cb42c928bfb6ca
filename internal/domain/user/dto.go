// internal/domain/user/dto.go
package user

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=72"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Device   string `json:"device" validate:"max=100"`
}

type LoginResponse struct {
	Detail    string `json:"detail"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}
