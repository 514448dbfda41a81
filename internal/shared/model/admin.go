// Package model 业务实体定义
package model

import "time"

// Admin 后台管理员
type Admin struct {
	ID       string `json:"_id" bson:"_id"`
	FName    string `json:"fname,omitempty" bson:"fname,omitempty"`
	LName    string `json:"lname,omitempty" bson:"lname,omitempty"`
	Username string `json:"username" bson:"username"` // 登录名即邮箱
	Password string `json:"-" bson:"password"`        // bcrypt 哈希
	OTP      *int   `json:"-" bson:"otp,omitempty"`   // 找回密码验证码，nil 表示无待验证 OTP
	Access   string `json:"access,omitempty" bson:"access,omitempty"`
	RoleID   int    `json:"role_id,omitempty" bson:"role_id,omitempty"`
	RoleName string `json:"role_name,omitempty" bson:"role_name,omitempty"`
}

// Token 已签发的管理端令牌记录，登出时删除实现显式吊销
type Token struct {
	ID        string    `json:"_id" bson:"_id"`
	Token     string    `json:"token" bson:"token"`
	RoleID    int       `json:"roleId" bson:"roleId"`
	CreatedAt time.Time `json:"created_at" bson:"created_at,omitempty"`
}

// LoginHistory 用户登录事件
type LoginHistory struct {
	ID            string    `json:"_id" bson:"_id"`
	UserID        string    `json:"user_id" bson:"user_id"`
	WalletAddress string    `json:"wallet_address,omitempty" bson:"wallet_address,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Location      string    `json:"location,omitempty" bson:"location,omitempty"`
	Browser       string    `json:"browser,omitempty" bson:"browser,omitempty"`
	LoginAt       time.Time `json:"login_at" bson:"login_at"`
}

// LoginHistoryView 登录历史列表行（聚合 user 后的投影）
type LoginHistoryView struct {
	ID        string    `json:"_id" bson:"_id"`
	UserName  string    `json:"user_name" bson:"user_name"`
	IPAddress string    `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Location  string    `json:"location,omitempty" bson:"location,omitempty"`
	Browser   string    `json:"browser,omitempty" bson:"browser,omitempty"`
	LoginAt   time.Time `json:"login_at" bson:"login_at"`
}

// ReportEntry 用户之间的举报记录
type ReportEntry struct {
	ID              string    `json:"_id" bson:"_id"`
	ReportFromUser  string    `json:"report_from_user_address" bson:"report_from_user_address"`
	ReportToUser    string    `json:"report_to_user_address" bson:"report_to_user_address"`
	Reason          string    `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at,omitempty"`
}

// ReportView 举报列表行（$lookup 双方用户别名后的投影）
type ReportView struct {
	ID             string     `json:"_id" bson:"_id"`
	FNameAlias     string     `json:"fname_alias,omitempty" bson:"fname_alias,omitempty"`
	LNameAlias     string     `json:"lname_alias,omitempty" bson:"lname_alias,omitempty"`
	FNameToAlias   string     `json:"fname_to_alias,omitempty" bson:"fname_to_alias,omitempty"`
	LNameToAlias   string     `json:"lname_to_alias,omitempty" bson:"lname_to_alias,omitempty"`
	ReportFromUser string     `json:"report_from_user_address" bson:"report_from_user_address"`
	ReportToUser   string     `json:"report_to_user_address" bson:"report_to_user_address"`
	Reason         string     `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
