// internal/domain/author/dto.go
package author

type CreateAuthorRequest struct {
	UserID         int64   `json:"user_id" validate:"required,gt=0"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url,max=200"`
}

// UpdateAuthorRequest carries a partial update; nil fields are left as is.
type UpdateAuthorRequest struct {
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url,max=200"`
}
