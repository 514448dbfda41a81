package model

import "time"

// KYCStatus KYC 审核状态
//
// 历史数据以数字存储：0=待审核 1=已通过 2=已驳回
type KYCStatus int

const (
	KYCPending  KYCStatus = 0
	KYCApproved KYCStatus = 1
	KYCRejected KYCStatus = 2
)

// VerifyFlag 三态验证标志
//
// 旧库中 email_verified/phone_verified 存在三种取值：缺失、0、1。
// 结构体中以 *VerifyFlag 建模，nil 表示字段缺失（等价于未验证）。
type VerifyFlag int

const (
	VerifyNo  VerifyFlag = 0
	VerifyYes VerifyFlag = 1
)

// IsVerified 报告三态标志是否为已验证
func (f *VerifyFlag) IsVerified() bool {
	return f != nil && *f == VerifyYes
}

// IsUnverified 报告三态标志是否为未验证（缺失或 0）
func (f *VerifyFlag) IsUnverified() bool {
	return f == nil || *f == VerifyNo
}

// User 平台用户
//
// 敏感字段（google_auth_secret、nonce 等）不参与 JSON 序列化，
// 列表查询另有投影白名单兜底。
type User struct {
	ID            string `json:"_id" bson:"_id"`
	FName         string `json:"fname,omitempty" bson:"fname,omitempty"`
	MName         string `json:"mname,omitempty" bson:"mname,omitempty"`
	LName         string `json:"lname,omitempty" bson:"lname,omitempty"`
	FNameAlias    string `json:"fname_alias,omitempty" bson:"fname_alias,omitempty"`
	LNameAlias    string `json:"lname_alias,omitempty" bson:"lname_alias,omitempty"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string `json:"phone,omitempty" bson:"phone,omitempty"`
	PhoneCountry  string `json:"phoneCountry,omitempty" bson:"phoneCountry,omitempty"`
	CurrentPre    string `json:"currentpre,omitempty" bson:"currentpre,omitempty"`
	Bio           string `json:"bio,omitempty" bson:"bio,omitempty"`
	City          string `json:"city,omitempty" bson:"city,omitempty"`
	Location      string `json:"location,omitempty" bson:"location,omitempty"`
	Nationality   string `json:"nationality,omitempty" bson:"nationality,omitempty"`
	DOB           string `json:"dob,omitempty" bson:"dob,omitempty"`
	ResAddress    string `json:"res_address,omitempty" bson:"res_address,omitempty"`
	PostalCode    string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	CountryIssue  string `json:"country_of_issue,omitempty" bson:"country_of_issue,omitempty"`
	VerifiedWith  string `json:"verified_with,omitempty" bson:"verified_with,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty" bson:"wallet_address,omitempty"`
	WalletType    string `json:"-" bson:"wallet_type,omitempty"`
	Nonce         string `json:"-" bson:"nonce,omitempty"`
	ReferredBy    string `json:"-" bson:"referred_by,omitempty"`

	// 对象存储中的文件 key，对外展示时换成限时签名 URL
	Profile      string `json:"profile,omitempty" bson:"profile,omitempty"`
	PassportURL  string `json:"passport_url,omitempty" bson:"passport_url,omitempty"`
	UserPhotoURL string `json:"user_photo_url,omitempty" bson:"user_photo_url,omitempty"`

	GoogleAuthSecret string `json:"-" bson:"google_auth_secret,omitempty"`
	Is2FAEnabled     bool   `json:"is_2FA_enabled" bson:"is_2FA_enabled"`
	Is2FALoginDone   bool   `json:"-" bson:"is_2FA_login_verified"`

	// is_banned/is_verified/kyc_completed 不加 omitempty：
	// 状态筛选谓词依赖显式的 false/0 值（缺失字段另有 $exists 兜底）
	IsBanned      bool        `json:"is_banned" bson:"is_banned"`
	EmailVerified *VerifyFlag `json:"email_verified,omitempty" bson:"email_verified,omitempty"`
	PhoneVerified *VerifyFlag `json:"phone_verified,omitempty" bson:"phone_verified,omitempty"`

	IsVerified   KYCStatus `json:"is_verified" bson:"is_verified"`
	KYCCompleted bool      `json:"kyc_completed" bson:"kyc_completed"`
	IsKYCDeleted bool      `json:"is_kyc_deleted,omitempty" bson:"is_kyc_deleted"`

	JoinedAt         *time.Time `json:"joined_at,omitempty" bson:"joined_at,omitempty"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	AdminCheckedAt   *time.Time `json:"admin_checked_at,omitempty" bson:"admin_checked_at,omitempty"`
	KYCSubmittedDate *time.Time `json:"kyc_submitted_date,omitempty" bson:"kyc_submitted_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at,omitempty"`
}
