package mongostore

import (
	"regexp"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// 列表查询构造器
//
// 每个列表端点的查询形状相同：基础过滤 + 可选搜索 + 可选状态筛选 + 分页。
// 本文件只构造 bson 谓词，不执行查询；分页结果与总数基于同一谓词各自执行，
// 两次查询之间不提供快照隔离。

// fullNameField 搜索字段哨兵：匹配 fname + " " + lname 拼接
const fullNameField = "$fullname"

// 各端点的搜索字段白名单
var (
	userSearchFields = []string{"fname", "lname", fullNameField}
	kycSearchFields  = []string{"wallet_address", "fname", "lname", fullNameField, "email", "phone", "city", "verified_with"}
)

// regexMatchField 单字段大小写不敏感的子串匹配
//
// 通过 $expr + $regexMatch 实现，$ifNull 兜底缺失字段（旧数据许多字段不存在）。
func regexMatchField(field, pattern string) bson.D {
	var input any
	if field == fullNameField {
		input = bson.D{{Key: "$concat", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$fname", ""}}},
			" ",
			bson.D{{Key: "$ifNull", Value: bson.A{"$lname", ""}}},
		}}}
	} else {
		input = bson.D{{Key: "$toString", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, ""}}}}}
	}
	return bson.D{{Key: "$expr", Value: bson.D{{Key: "$regexMatch", Value: bson.D{
		{Key: "input", Value: input},
		{Key: "regex", Value: pattern},
		{Key: "options", Value: "i"},
	}}}}}
}

// searchFilter 在字段白名单上做逻辑 OR 的子串搜索
//
// 搜索词按字面量处理（QuoteMeta），避免用户输入被当作正则元字符。
func searchFilter(search string, fields []string) bson.D {
	pattern := regexp.QuoteMeta(search)
	or := bson.A{}
	for _, f := range fields {
		or = append(or, regexMatchField(f, pattern))
	}
	return bson.D{{Key: "$or", Value: or}}
}

// absentOrZero 三态字段"缺失或 0"谓词
func absentOrZero(field string) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: field, Value: 0}},
		bson.D{{Key: field, Value: bson.D{{Key: "$exists", Value: false}}}},
	}}}
}

// userStatusFilter 用户列表的命名状态筛选
//
// Active ⇒ 未封禁且邮箱、手机均已验证；Ban ⇒ 已封禁；
// Email/Mobile ⇒ 对应验证标志缺失或为 0 且未封禁。
// 未识别的取值返回 nil（不加状态约束）。
func userStatusFilter(status string) bson.D {
	notBanned := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "is_banned", Value: false}},
		bson.D{{Key: "is_banned", Value: bson.D{{Key: "$exists", Value: false}}}},
	}}}

	switch status {
	case storage.FilterActive:
		return bson.D{{Key: "$and", Value: bson.A{
			notBanned,
			bson.D{{Key: "email_verified", Value: 1}},
			bson.D{{Key: "phone_verified", Value: 1}},
		}}}
	case storage.FilterBan:
		return bson.D{{Key: "is_banned", Value: true}}
	case storage.FilterEmail:
		return bson.D{{Key: "$and", Value: bson.A{
			absentOrZero("email_verified"),
			bson.D{{Key: "is_banned", Value: bson.D{{Key: "$ne", Value: true}}}},
		}}}
	case storage.FilterMobile:
		return bson.D{{Key: "$and", Value: bson.A{
			absentOrZero("phone_verified"),
			bson.D{{Key: "is_banned", Value: bson.D{{Key: "$ne", Value: true}}}},
		}}}
	}
	return nil
}

// kycStatusFilter KYC 列表的命名状态筛选
//
// Pending ⇒ is_verified 缺失或 0，Approved ⇒ 1，Rejected ⇒ 2。
// "All"、空串及未识别取值不加约束。
func kycStatusFilter(status string) bson.D {
	switch status {
	case storage.FilterPending:
		return absentOrZero("is_verified")
	case storage.FilterApproved:
		return bson.D{{Key: "is_verified", Value: 1}}
	case storage.FilterRejected:
		return bson.D{{Key: "is_verified", Value: 2}}
	}
	return nil
}

// buildListFilter 组合基础过滤、搜索与状态筛选
//
// 各部分以 $and 连接；全部为空时返回空过滤（匹配全集）。
func buildListFilter(base bson.D, search bson.D, status bson.D) bson.D {
	parts := bson.A{}
	if base != nil {
		parts = append(parts, base)
	}
	if search != nil {
		parts = append(parts, search)
	}
	if status != nil {
		parts = append(parts, status)
	}
	switch len(parts) {
	case 0:
		return bson.D{}
	case 1:
		return parts[0].(bson.D)
	}
	return bson.D{{Key: "$and", Value: parts}}
}

// userListFilter 用户列表（搜索 + 状态）的完整谓词
func userListFilter(search, status string) bson.D {
	var searchPart bson.D
	if search != "" {
		searchPart = searchFilter(search, userSearchFields)
	}
	return buildListFilter(nil, searchPart, userStatusFilter(status))
}

// kycListFilter KYC 列表谓词，基础过滤固定为 kyc_completed=true
func kycListFilter(search, status string) bson.D {
	base := bson.D{{Key: "kyc_completed", Value: true}}
	var searchPart bson.D
	if search != "" {
		searchPart = searchFilter(search, kycSearchFields)
	}
	return buildListFilter(base, searchPart, kycStatusFilter(status))
}

// paginate 向聚合管道追加 $skip/$limit
//
// PageSize 为 0 表示不分页，原样返回。
func paginate(pipeline mongo.Pipeline, q storage.ListQuery) mongo.Pipeline {
	if q.PageSize <= 0 {
		return pipeline
	}
	return append(pipeline,
		bson.D{{Key: "$skip", Value: q.Skip()}},
		bson.D{{Key: "$limit", Value: q.Limit()}},
	)
}

// 投影白名单/黑名单
var (
	// userListProjection 用户列表安全字段白名单
	userListProjection = bson.D{
		{Key: "_id", Value: 1},
		{Key: "joined_at", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "fname_alias", Value: 1},
		{Key: "lname_alias", Value: 1},
		{Key: "email", Value: 1},
		{Key: "fname", Value: 1},
		{Key: "lname", Value: 1},
		{Key: "phone", Value: 1},
		{Key: "phoneCountry", Value: 1},
		{Key: "is_banned", Value: 1},
		{Key: "email_verified", Value: 1},
		{Key: "phone_verified", Value: 1},
	}

	// kycListProjection KYC 列表排除的敏感/内部字段
	kycListProjection = bson.D{
		{Key: "google_auth_secret", Value: 0},
		{Key: "nonce", Value: 0},
		{Key: "wallet_type", Value: 0},
		{Key: "is_2FA_login_verified", Value: 0},
		{Key: "is_kyc_deleted", Value: 0},
		{Key: "referred_by", Value: 0},
	}

	// secretProjection 点查用户时排除的敏感字段
	secretProjection = bson.D{
		{Key: "google_auth_secret", Value: 0},
		{Key: "nonce", Value: 0},
		{Key: "wallet_type", Value: 0},
		{Key: "is_2FA_login_verified", Value: 0},
		{Key: "referred_by", Value: 0},
	}
)
