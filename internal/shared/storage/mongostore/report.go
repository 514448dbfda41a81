package mongostore

import (
	"context"
	"regexp"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ============================================================================
// ReportStore
// ============================================================================

// reportPipeline 举报列表基础管道
//
// 双向 $lookup 用户表取得举报人/被举报人别名，$unwind 带
// preserveNullAndEmptyArrays 使关联可选（用户可能已注销）。
// 搜索在投影后的别名字段上进行，因此放在 $match 阶段而非前置过滤。
func reportPipeline(toAddress, search string) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	if toAddress != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "report_to_user_address", Value: toAddress},
		}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColUsers},
			{Key: "localField", Value: "report_from_user_address"},
			{Key: "foreignField", Value: "wallet_address"},
			{Key: "as", Value: "user_info"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user_info"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColUsers},
			{Key: "localField", Value: "report_to_user_address"},
			{Key: "foreignField", Value: "wallet_address"},
			{Key: "as", Value: "users_info"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$users_info"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "fname_alias", Value: "$user_info.fname_alias"},
			{Key: "lname_alias", Value: "$user_info.lname_alias"},
			{Key: "fname_to_alias", Value: "$users_info.fname_alias"},
			{Key: "lname_to_alias", Value: "$users_info.lname_alias"},
			{Key: "report_from_user_address", Value: "$report_from_user_address"},
			{Key: "report_to_user_address", Value: "$report_to_user_address"},
			{Key: "reason", Value: "$reason"},
			{Key: "created_at", Value: "$created_at"},
		}}},
	)

	if search != "" {
		pattern := regexp.QuoteMeta(search)
		regex := func(field string) bson.D {
			return bson.D{{Key: field, Value: bson.D{
				{Key: "$regex", Value: pattern},
				{Key: "$options", Value: "i"},
			}}}
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "$or", Value: bson.A{
				regex("fname_alias"),
				regex("lname_alias"),
				regex("fname_to_alias"),
				regex("lname_to_alias"),
				regex("reason"),
			}},
		}}})
	}

	return pipeline
}

// ListReports 全量举报列表（搜索 + 分页）
func (s *Store) ListReports(ctx context.Context, q storage.ListQuery) ([]*model.ReportView, error) {
	pipeline := paginate(reportPipeline("", q.Search), q)
	return aggregateAll[model.ReportView](ctx, s.col(ColReportUsers), pipeline)
}

// CountReports 与 ListReports 同一管道的总数，通过 $count 阶段计算
func (s *Store) CountReports(ctx context.Context, search string) (int64, error) {
	return s.countReports(ctx, reportPipeline("", search))
}

// ListReportsByAddress 针对某地址的举报列表
func (s *Store) ListReportsByAddress(ctx context.Context, address string, q storage.ListQuery) ([]*model.ReportView, error) {
	pipeline := paginate(reportPipeline(address, q.Search), q)
	return aggregateAll[model.ReportView](ctx, s.col(ColReportUsers), pipeline)
}

// CountReportsByAddress 针对某地址的举报总数
func (s *Store) CountReportsByAddress(ctx context.Context, address string) (int64, error) {
	return countDocs(ctx, s.col(ColReportUsers), bson.D{{Key: "report_to_user_address", Value: address}})
}

func (s *Store) countReports(ctx context.Context, pipeline mongo.Pipeline) (int64, error) {
	pipeline = append(pipeline, bson.D{{Key: "$count", Value: "count"}})

	type countRow struct {
		Count int64 `bson:"count"`
	}
	rows, err := aggregateAll[countRow](ctx, s.col(ColReportUsers), pipeline)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}
