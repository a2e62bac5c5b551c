package model

import (
	"time"

	"github.com/readmegen-lab/backend/internal/entity"
)

type User struct {
	ID            string    `json:"id"`
	ServiceUserID string    `json:"service_user_id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	AvatarURL     string    `json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConvertUser maps the stored entity to its public shape. The encrypted
// provider token and the refresh token hash never leave the repository
// layer through this path.
func ConvertUser(user *entity.User) User {
	return User{
		ID:            user.ID,
		ServiceUserID: user.ServiceUserID.String,
		Name:          user.Name,
		Email:         user.Email,
		AvatarURL:     user.ProfilePicture,
		CreatedAt:     user.CreatedAt,
	}
}
