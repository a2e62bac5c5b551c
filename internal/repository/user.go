package repository

import (
	"context"
	"database/sql"

	"github.com/readmegen-lab/backend/internal/entity"
	"github.com/readmegen-lab/backend/pkg/crypto"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByServiceUserIDOrEmail(ctx context.Context, serviceUserID, email string) (*entity.User, error)
	UpdateByID(ctx context.Context, id string, data *entity.User) error
	SetRefreshToken(ctx context.Context, id, hashedToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
	GetServiceToken(ctx context.Context, id string) (string, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	cipher *crypto.TokenCipher
}

func NewUserRepository(cipher *crypto.TokenCipher) UserRepository {
	return &userRepository{cipher: cipher}
}

// Create persists a new user. The provider token is encrypted here,
// callers never hand ciphertext in and plaintext never reaches the
// database.
func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	encrypted, err := r.cipher.Encrypt(data.ServiceToken)
	if err != nil {
		return err
	}

	data.ServiceToken = encrypted
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByServiceUserIDOrEmail(
	ctx context.Context, serviceUserID, email string,
) (*entity.User, error) {
	var record entity.User
	err := xcontext.DB(ctx).
		Where("service_user_id=? OR email=?", serviceUserID, email).
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, data *entity.User) error {
	updateMap := map[string]any{}
	if data.ServiceUserID.Valid {
		updateMap["service_user_id"] = data.ServiceUserID
	}

	if data.ProfilePicture != "" {
		updateMap["profile_picture"] = data.ProfilePicture
	}

	if data.ServiceToken != "" {
		encrypted, err := r.cipher.Encrypt(data.ServiceToken)
		if err != nil {
			return err
		}
		updateMap["service_token"] = encrypted
	}

	if len(updateMap) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap).Error
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id, hashedToken string) error {
	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).
		Update("refresh_token", sql.NullString{Valid: true, String: hashedToken}).Error
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).
		Update("refresh_token", sql.NullString{}).Error
}

// GetServiceToken decrypts the stored provider token at the point of
// use. No other read path returns the plaintext.
func (r *userRepository) GetServiceToken(ctx context.Context, id string) (string, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	return r.cipher.Decrypt(user.ServiceToken)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
