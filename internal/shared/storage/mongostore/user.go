package mongostore

import (
	"context"
	"time"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	opts := options.FindOne().SetProjection(secretProjection)
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}}, opts)
}

func (s *Store) GetUserByWallet(ctx context.Context, address string) (*model.User, error) {
	opts := options.FindOne().SetProjection(secretProjection)
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "wallet_address", Value: address}}, opts)
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

// UpdateUserFields 按 _id 更新指定字段，附带 updated_at
func (s *Store) UpdateUserFields(ctx context.Context, id string, fields map[string]any) error {
	update := bson.D{{Key: "updated_at", Value: time.Now()}}
	for k, v := range fields {
		update = append(update, bson.E{Key: k, Value: v})
	}
	return updateFields(ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}}, update)
}

// EmailTaken 邮箱是否被其他用户占用
func (s *Store) EmailTaken(ctx context.Context, excludeID, email string) (bool, error) {
	n, err := countDocs(ctx, s.col(ColUsers), bson.D{
		{Key: "email", Value: email},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}},
	})
	return n > 0, err
}

// PhoneTaken 手机号是否被其他用户占用
func (s *Store) PhoneTaken(ctx context.Context, excludeID, phone string) (bool, error) {
	n, err := countDocs(ctx, s.col(ColUsers), bson.D{
		{Key: "phone", Value: phone},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}},
	})
	return n > 0, err
}

// ============================================================================
// 用户列表
// ============================================================================

// ListUsers 按搜索+状态筛选返回一页用户，投影为安全字段白名单
func (s *Store) ListUsers(ctx context.Context, q storage.ListQuery) ([]*model.User, error) {
	filter := userListFilter(q.Search, q.Status)
	opts := options.Find().SetProjection(userListProjection)
	if q.PageSize > 0 {
		opts.SetSkip(q.Skip()).SetLimit(q.Limit())
	}
	return findMany[model.User](ctx, s.col(ColUsers), filter, opts)
}

// CountUsers 与 ListUsers 同一谓词的总数
func (s *Store) CountUsers(ctx context.Context, search, status string) (int64, error) {
	return countDocs(ctx, s.col(ColUsers), userListFilter(search, status))
}

// UserDashboardCounts 看板统计：全量 + 各状态筛选口径
func (s *Store) UserDashboardCounts(ctx context.Context) (*storage.UserCounts, error) {
	counts := &storage.UserCounts{}
	col := s.col(ColUsers)

	var err error
	if counts.Total, err = countDocs(ctx, col, bson.D{}); err != nil {
		return nil, err
	}
	if counts.Active, err = countDocs(ctx, col, userStatusFilter(storage.FilterActive)); err != nil {
		return nil, err
	}
	if counts.Ban, err = countDocs(ctx, col, userStatusFilter(storage.FilterBan)); err != nil {
		return nil, err
	}
	if counts.Email, err = countDocs(ctx, col, userStatusFilter(storage.FilterEmail)); err != nil {
		return nil, err
	}
	if counts.Phone, err = countDocs(ctx, col, userStatusFilter(storage.FilterMobile)); err != nil {
		return nil, err
	}
	return counts, nil
}

// ============================================================================
// KYC 列表
// ============================================================================

// ListKYCUsers 已提交 KYC 的用户列表，排除敏感字段
func (s *Store) ListKYCUsers(ctx context.Context, q storage.ListQuery) ([]*model.User, error) {
	filter := kycListFilter(q.Search, q.Status)
	opts := options.Find().SetProjection(kycListProjection)
	if q.PageSize > 0 {
		opts.SetSkip(q.Skip()).SetLimit(q.Limit())
	}
	return findMany[model.User](ctx, s.col(ColUsers), filter, opts)
}

// CountKYCUsers 与 ListKYCUsers 同一谓词的总数
func (s *Store) CountKYCUsers(ctx context.Context, search, status string) (int64, error) {
	return countDocs(ctx, s.col(ColUsers), kycListFilter(search, status))
}
