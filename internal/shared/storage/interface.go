package storage

import (
	"context"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
)

// UserCounts 用户看板统计，按状态筛选口径分组
type UserCounts struct {
	Total  int64 `json:"totalUser"`
	Active int64 `json:"activeCount"`
	Ban    int64 `json:"banCount"`
	Email  int64 `json:"emailCount"`
	Phone  int64 `json:"phoneCount"`
}

// UserStore 用户读写
//
// 点查不存在时返回 (nil, nil)，由调用方决定映射为 404。
type UserStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByWallet(ctx context.Context, address string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUserFields(ctx context.Context, id string, fields map[string]any) error
	EmailTaken(ctx context.Context, excludeID, email string) (bool, error)
	PhoneTaken(ctx context.Context, excludeID, phone string) (bool, error)

	ListUsers(ctx context.Context, q ListQuery) ([]*model.User, error)
	CountUsers(ctx context.Context, search, status string) (int64, error)
	UserDashboardCounts(ctx context.Context) (*UserCounts, error)

	ListKYCUsers(ctx context.Context, q ListQuery) ([]*model.User, error)
	CountKYCUsers(ctx context.Context, search, status string) (int64, error)
}

// LoginHistoryStore 登录历史查询
type LoginHistoryStore interface {
	ListLoginHistory(ctx context.Context, userID string, q ListQuery) ([]*model.LoginHistoryView, error)
	CountLoginHistory(ctx context.Context, userID string) (int64, error)
}

// ReportStore 举报记录查询
type ReportStore interface {
	ListReports(ctx context.Context, q ListQuery) ([]*model.ReportView, error)
	CountReports(ctx context.Context, search string) (int64, error)
	ListReportsByAddress(ctx context.Context, address string, q ListQuery) ([]*model.ReportView, error)
	CountReportsByAddress(ctx context.Context, address string) (int64, error)
}

// AdminStore 管理员账号读写
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*model.Admin, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	SetAdminOTP(ctx context.Context, username string, otp int) error
	ResetAdminPassword(ctx context.Context, username, passwordHash string) error
}

// TokenStore 令牌签发记录，删除即吊销
type TokenStore interface {
	CreateToken(ctx context.Context, token *model.Token) error
	GetToken(ctx context.Context, token string, roleID int) (*model.Token, error)
	DeleteToken(ctx context.Context, token string) error
}

// PersistentStore 聚合存储接口，由 mongostore 实现
type PersistentStore interface {
	UserStore
	LoginHistoryStore
	ReportStore
	AdminStore
	TokenStore
	Close() error
}
