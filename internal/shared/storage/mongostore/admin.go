package mongostore

import (
	"context"
	"time"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// AdminStore
// ============================================================================

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return findOne[model.Admin](ctx, s.col(ColAdmins), bson.D{{Key: "username", Value: username}})
}

func (s *Store) GetAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	return findOne[model.Admin](ctx, s.col(ColAdmins), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	return insertOne(ctx, s.col(ColAdmins), admin)
}

// SetAdminOTP 写入找回密码验证码
func (s *Store) SetAdminOTP(ctx context.Context, username string, otp int) error {
	return updateFields(ctx, s.col(ColAdmins), bson.D{{Key: "username", Value: username}}, bson.D{
		{Key: "otp", Value: otp},
	})
}

// ResetAdminPassword 更新密码哈希并清除 OTP
func (s *Store) ResetAdminPassword(ctx context.Context, username, passwordHash string) error {
	return updateFields(ctx, s.col(ColAdmins), bson.D{{Key: "username", Value: username}}, bson.D{
		{Key: "password", Value: passwordHash},
		{Key: "otp", Value: nil},
	})
}

// ============================================================================
// TokenStore
// ============================================================================

func (s *Store) CreateToken(ctx context.Context, token *model.Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	return insertOne(ctx, s.col(ColTokens), token)
}

func (s *Store) GetToken(ctx context.Context, token string, roleID int) (*model.Token, error) {
	return findOne[model.Token](ctx, s.col(ColTokens), bson.D{
		{Key: "token", Value: token},
		{Key: "roleId", Value: roleID},
	})
}

// DeleteToken 删除令牌记录实现显式吊销
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	return deleteOne(ctx, s.col(ColTokens), bson.D{{Key: "token", Value: token}})
}
