// internal/domain/content/dto.go
package content

type CreateContentRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2555"`
	AuthorID    int64  `json:"author_id" validate:"required,gt=0"`
	URL         string `json:"url" validate:"required,url,max=200"`
}

type UpdateContentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2555"`
	URL         *string `json:"url" validate:"omitempty,url,max=200"`
}
