package testutil

import (
	"database/sql"

	"github.com/readmegen-lab/backend/internal/entity"
)

func SampleUser(overwriteFields func(*entity.User)) *entity.User {
	user := &entity.User{
		Base:           entity.Base{ID: "user-1"},
		ServiceUserID:  sql.NullString{Valid: true, String: "10001"},
		Name:           "alice",
		Email:          "alice@example.com",
		ProfilePicture: "https://avatars.example.com/alice",
		ServiceToken:   "gho_sample_token",
	}

	if overwriteFields != nil {
		overwriteFields(user)
	}

	return user
}
