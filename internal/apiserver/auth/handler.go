package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/mailer"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AdminStore 管理员账号存储接口
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*model.Admin, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	SetAdminOTP(ctx context.Context, username string, otp int) error
	ResetAdminPassword(ctx context.Context, username, passwordHash string) error
}

// TokenStore 令牌记录存储接口
type TokenStore interface {
	TokenLookup
	CreateToken(ctx context.Context, token *model.Token) error
	DeleteToken(ctx context.Context, token string) error
}

// UserBioStore 公开用户资料查询
type UserBioStore interface {
	GetUserByWallet(ctx context.Context, address string) (*model.User, error)
}

// Presigner 对象存储签名 URL
type Presigner interface {
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

// Handler 认证 HTTP 处理器
type Handler struct {
	admins AdminStore
	tokens TokenStore
	users  UserBioStore
	signer Presigner
	mail   mailer.Mailer
	cfg    Config
}

// NewHandler 创建认证处理器
func NewHandler(admins AdminStore, tokens TokenStore, users UserBioStore, signer Presigner, mail mailer.Mailer, cfg Config) *Handler {
	return &Handler{admins: admins, tokens: tokens, users: users, signer: signer, mail: mail, cfg: cfg}
}

// RegisterRoutes 注册认证相关路由
//
// adminlogin/adminlogout 由调用方包上节流中间件后传入。
func (h *Handler) RegisterRoutes(mux *http.ServeMux, throttled func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /auth/getuser/{address}", h.GetUserByAddress)
	mux.HandleFunc("POST /auth/forgotpassword", h.ForgotPassword)
	mux.HandleFunc("POST /auth/checkOTP", h.CheckOTP)
	mux.HandleFunc("POST /auth/resetPassword", h.ResetPassword)
	mux.HandleFunc("POST /auth/adminlogin", throttled(h.AdminLogin))
	mux.HandleFunc("POST /auth/adminlogout", throttled(h.AdminLogout))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type checkOTPRequest struct {
	Email string `json:"email"`
	OTP   int    `json:"otp"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	ConfirmPassword string `json:"confirmPassword"`
}

type adminLoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// ============================================================================
// Handlers
// ============================================================================

// GetUserByAddress 公开的用户名片：别名 + 头像签名 URL
func (h *Handler) GetUserByAddress(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	user, err := h.users.GetUserByWallet(r.Context(), address)
	if err != nil {
		log.Printf("[auth.getuser] GetUserByWallet error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Address #%s not found", address))
		return
	}

	docURL, err := h.signer.PresignedGetURL(r.Context(), user.Profile)
	if err != nil {
		log.Printf("[auth.getuser] presign error: %v", err)
		docURL = ""
	}

	// 未设置别名时用占位名，前端依赖非空展示
	if user.FNameAlias == "" {
		user.FNameAlias = "John"
	}
	if user.LNameAlias == "" {
		user.LNameAlias = "Doe"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"docUrl": docURL,
		"user":   user,
	})
}

// ForgotPassword 找回密码：生成 OTP 并发送邮件
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid E-mail address.")
		return
	}

	admin, err := h.admins.GetAdminByUsername(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.forgotpassword] GetAdminByUsername error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if admin == nil {
		writeError(w, http.StatusBadRequest, "Email not exist")
		return
	}

	otp := GenerateOTP()
	if err := h.admins.SetAdminOTP(r.Context(), req.Email, otp); err != nil {
		log.Printf("[auth.forgotpassword] SetAdminOTP error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// 邮件失败只记日志，OTP 已落库，不回滚
	if err := h.mail.Send(r.Context(), req.Email, "Middn :: Forgot Password", "forgot-password", map[string]string{
		"title": "Forgot Password",
		"otp":   fmt.Sprintf("%d", otp),
	}); err != nil {
		log.Printf("[auth.forgotpassword] mail error: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "OTP Sent On your Email address",
	})
}

// CheckOTP 校验找回密码验证码
func (h *Handler) CheckOTP(w http.ResponseWriter, r *http.Request) {
	var req checkOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.admins.GetAdminByUsername(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.checkotp] GetAdminByUsername error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if admin == nil || admin.OTP == nil || *admin.OTP != req.OTP {
		writeError(w, http.StatusBadRequest, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "OTP Verified successfully",
	})
}

// ResetPassword 重置密码，要求存在待验证 OTP，成功后清除
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.admins.GetAdminByUsername(r.Context(), req.Email)
	if err != nil {
		log.Printf("[auth.resetpassword] GetAdminByUsername error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if admin == nil {
		writeError(w, http.StatusBadRequest, "User not found.")
		return
	}
	if admin.OTP == nil {
		writeError(w, http.StatusBadRequest, "Token Expired.")
		return
	}
	if len(req.ConfirmPassword) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := HashPassword(req.ConfirmPassword)
	if err != nil {
		log.Printf("[auth.resetpassword] HashPassword error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.admins.ResetAdminPassword(r.Context(), req.Email, hash); err != nil {
		log.Printf("[auth.resetpassword] ResetAdminPassword error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Your Password Changed successfully",
	})
}

// AdminLogin 管理员登录：bcrypt 校验后签发 24h 令牌并落库
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.admins.GetAdminByUsername(r.Context(), req.UserName)
	if err != nil {
		log.Printf("[auth.adminlogin] GetAdminByUsername error: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}
	if admin == nil || !CheckPassword(req.Password, admin.Password) {
		writeError(w, http.StatusBadRequest, "Invalid username or password")
		return
	}

	token, err := GenerateToken(h.cfg, admin.ID, admin.Username, admin.Access)
	if err != nil {
		log.Printf("[auth.adminlogin] GenerateToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}
	if err := h.tokens.CreateToken(r.Context(), &model.Token{
		ID:     uuid.NewString(),
		Token:  token,
		RoleID: admin.RoleID,
	}); err != nil {
		log.Printf("[auth.adminlogin] CreateToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}

	log.Printf("[auth] Admin logged in: %s", admin.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"userId":  admin.ID,
		"message": "Admin logged in successfully",
	})
}

// AdminLogout 登出：删除令牌记录实现吊销
func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authorization Token not found")
		return
	}

	if err := h.tokens.DeleteToken(r.Context(), token); err != nil {
		// 令牌不存在也按成功处理，登出是幂等操作
		log.Printf("[auth.adminlogout] DeleteToken: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Admin logged out successfully",
	})
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdmin 确保管理员账号存在（启动时调用）
// 如果配置了 adminEmail 且数据库中不存在该账号，则自动创建
func EnsureAdmin(admins AdminStore, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := admins.GetAdminByUsername(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if existing != nil {
		log.Printf("[auth] Admin already exists: %s (%s)", adminEmail, existing.ID)
		return nil
	}

	hash, err := HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.Admin{
		ID:       bson.NewObjectID().Hex(),
		Username: adminEmail,
		Password: hash,
		Access:   "full",
		RoleID:   1,
		RoleName: "admin",
	}
	if err := admins.CreateAdmin(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("[auth] Created admin: %s (%s)", adminEmail, admin.ID)
	return nil
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
