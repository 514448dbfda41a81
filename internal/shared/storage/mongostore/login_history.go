package mongostore

import (
	"context"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ============================================================================
// LoginHistoryStore
// ============================================================================

// loginHistoryPipeline 按 user_id 过滤，$lookup 用户后投影展示行
func loginHistoryPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "user_id", Value: userID}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColUsers},
			{Key: "localField", Value: "wallet_address"},
			{Key: "foreignField", Value: "wallet_address"},
			{Key: "as", Value: "user_info"},
		}}},
		bson.D{{Key: "$unwind", Value: "$user_info"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "user_name", Value: bson.D{{Key: "$concat", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$user_info.fname", ""}}},
				" ",
				bson.D{{Key: "$ifNull", Value: bson.A{"$user_info.lname", ""}}},
			}}}},
			{Key: "ip_address", Value: "$ip_address"},
			{Key: "location", Value: "$location"},
			{Key: "browser", Value: "$browser"},
			{Key: "login_at", Value: "$login_at"},
		}}},
		// 按登录时间倒序
		bson.D{{Key: "$sort", Value: bson.D{{Key: "login_at", Value: -1}}}},
	}
}

// ListLoginHistory 某用户的登录历史，按时间倒序分页
func (s *Store) ListLoginHistory(ctx context.Context, userID string, q storage.ListQuery) ([]*model.LoginHistoryView, error) {
	pipeline := paginate(loginHistoryPipeline(userID), q)
	return aggregateAll[model.LoginHistoryView](ctx, s.col(ColLoginHistory), pipeline)
}

// CountLoginHistory 某用户的登录历史总数
func (s *Store) CountLoginHistory(ctx context.Context, userID string) (int64, error) {
	filter := bson.D{}
	if userID != "" {
		filter = bson.D{{Key: "user_id", Value: userID}}
	}
	return countDocs(ctx, s.col(ColLoginHistory), filter)
}
