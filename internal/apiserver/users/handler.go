// Package users 用户管理接口：列表、资料更新、状态流转、KYC 审核
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/mailer"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"
)

// ObjectStore 对象存储依赖，头像与 KYC 证件
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

// Handler 用户管理 HTTP 处理器
type Handler struct {
	users   storage.UserStore
	history storage.LoginHistoryStore
	objects ObjectStore
	mail    mailer.Mailer
}

// NewHandler 创建用户管理处理器
func NewHandler(users storage.UserStore, history storage.LoginHistoryStore, objects ObjectStore, mail mailer.Mailer) *Handler {
	return &Handler{users: users, history: history, objects: objects, mail: mail}
}

// RegisterRoutes 注册 /users 路由
//
// 调用方负责在外层包认证中间件；throttled 包节流中间件。
func (h *Handler) RegisterRoutes(mux *http.ServeMux, throttled func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /users/userList", h.UserList)
	mux.HandleFunc("PUT /users/updateUser/{id}", throttled(h.UpdateUser))
	mux.HandleFunc("GET /users/getUserById/{id}", h.GetUserByID)
	mux.HandleFunc("GET /users/getLoginHistory/{id}", h.GetLoginHistory)
	mux.HandleFunc("POST /users/twoFADisableUser/{id}", throttled(h.TwoFADisableUser))
	mux.HandleFunc("GET /users/getUsersCount", h.GetUsersCount)
	mux.HandleFunc("PUT /users/bannedUser/{id}", h.BanUser)
	mux.HandleFunc("PUT /users/activeUser/{id}", h.ActivateUser)
	mux.HandleFunc("PUT /users/userEmailVerified/{id}", h.EmailVerified)
	mux.HandleFunc("PUT /users/userMobileVerified/{id}", h.MobileVerified)

	mux.HandleFunc("GET /users/acceptKyc/{id}", h.AcceptKYC)
	mux.HandleFunc("POST /users/rejectKyc/{id}", h.RejectKYC)
	mux.HandleFunc("GET /users/kycUserList", h.KYCUserList)
	mux.HandleFunc("GET /users/viewKyc/{id}", h.ViewKYC)
	mux.HandleFunc("GET /users/deleteKyc/{id}", h.DeleteKYC)
}

// ============================================================================
// 列表与查询
// ============================================================================

// UserList 用户分页列表，附带按筛选口径的总数与看板统计
func (h *Handler) UserList(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r, 5)

	usersData, err := h.users.ListUsers(r.Context(), q)
	if err != nil {
		log.Printf("[users.list] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	total, err := h.users.CountUsers(r.Context(), q.Search, q.Status)
	if err != nil {
		log.Printf("[users.list] CountUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	counts, err := h.users.UserDashboardCounts(r.Context())
	if err != nil {
		log.Printf("[users.list] UserDashboardCounts error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "User found successfully",
		"users":           usersData,
		"totalUsersCount": total,
		"totalUser":       counts.Total,
		"activeCount":     counts.Active,
		"banCount":        counts.Ban,
		"emailCount":      counts.Email,
		"phoneCount":      counts.Phone,
	})
}

// GetUserByID 用户详情，头像替换为签名 URL
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "User not found")
	if !ok {
		return
	}
	h.respondUser(w, r, user, "User found successfully")
}

// GetUsersCount 用户总数
func (h *Handler) GetUsersCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.users.UserDashboardCounts(r.Context())
	if err != nil {
		log.Printf("[users.count] UserDashboardCounts error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Get Users successfully",
		"totalUser": counts.Total,
	})
}

// GetLoginHistory 用户登录历史分页
func (h *Handler) GetLoginHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "User Id not found.")
		return
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		log.Printf("[users.history] GetUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusBadRequest, "User not found.")
		return
	}

	q := listQueryFromRequest(r, 10)
	history, err := h.history.ListLoginHistory(r.Context(), id, q)
	if err != nil {
		log.Printf("[users.history] ListLoginHistory error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	count, err := h.history.CountLoginHistory(r.Context(), id)
	if err != nil {
		log.Printf("[users.history] CountLoginHistory error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loginHistory":      history,
		"loginHistoryCount": count,
	})
}

// ============================================================================
// 资料更新
// ============================================================================

var (
	updateEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*$`)
	phoneRegex       = regexp.MustCompile(`^[0-9]{5,10}$`)
)

type updateUserRequest struct {
	FName        string `json:"fname"`
	LName        string `json:"lname"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PhoneCountry string `json:"phoneCountry"`
	Bio          string `json:"bio"`
	Location     string `json:"location"`
}

// UpdateUser 更新用户资料
//
// 支持 multipart（带可选 profile 头像文件）与纯 JSON 两种提交方式。
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, file, header, err := parseUpdateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if file != nil {
		defer file.Close()
	}

	req.FName = strings.TrimSpace(req.FName)
	req.LName = strings.TrimSpace(req.LName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FName == "" {
		writeError(w, http.StatusBadRequest, "Please enter first name.")
		return
	}
	if req.LName == "" {
		writeError(w, http.StatusBadRequest, "Please enter last name.")
		return
	}
	if req.PhoneCountry == "" {
		writeError(w, http.StatusBadRequest, "Please enter country code.")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Please enter email.")
		return
	}
	if !updateEmailRegex.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid E-mail address.")
		return
	}
	taken, err := h.users.EmailTaken(r.Context(), id, req.Email)
	if err != nil {
		log.Printf("[users.update] EmailTaken error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, "Email already Exist.")
		return
	}
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "Please enter phone number.")
		return
	}
	if !phoneRegex.MatchString(req.Phone) {
		writeError(w, http.StatusBadRequest, "Invalid Phone.")
		return
	}
	taken, err = h.users.PhoneTaken(r.Context(), id, req.Phone)
	if err != nil {
		log.Printf("[users.update] PhoneTaken error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, "Phone already Exist.")
		return
	}
	if !validCountryCode(req.PhoneCountry) {
		writeError(w, http.StatusBadRequest, "Invalid country code.")
		return
	}

	fields := map[string]any{
		"fname":        req.FName,
		"lname":        req.LName,
		"email":        req.Email,
		"phone":        req.Phone,
		"phoneCountry": req.PhoneCountry,
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}

	if file != nil {
		key := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), header.Filename)
		contentType := header.Header.Get("Content-Type")
		if err := h.objects.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
			log.Printf("[users.update] upload profile error: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to upload profile image")
			return
		}
		fields["profile"] = key
	}

	if err := h.users.UpdateUserFields(r.Context(), id, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("User #%s not found", id))
			return
		}
		log.Printf("[users.update] UpdateUserFields error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil || user == nil {
		log.Printf("[users.update] reload user error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.respondUser(w, r, user, "Users has been successfully updated.")
}

// parseUpdateRequest 解析 multipart 或 JSON 形式的更新请求
func parseUpdateRequest(r *http.Request) (*updateUserRequest, multipart.File, *multipart.FileHeader, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return nil, nil, nil, err
		}
		req := &updateUserRequest{
			FName:        r.FormValue("fname"),
			LName:        r.FormValue("lname"),
			Email:        r.FormValue("email"),
			Phone:        r.FormValue("phone"),
			PhoneCountry: r.FormValue("phoneCountry"),
			Bio:          r.FormValue("bio"),
			Location:     r.FormValue("location"),
		}
		file, header, err := r.FormFile("profile")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return req, nil, nil, nil
			}
			return nil, nil, nil, err
		}
		return req, file, header, nil
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, err
	}
	return &req, nil, nil, nil
}

// ============================================================================
// 状态流转
// ============================================================================

// TwoFADisableUser 管理员强制关闭用户的 Google 2FA
func (h *Handler) TwoFADisableUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, fmt.Sprintf("User #%s not found", r.PathValue("id")))
	if !ok {
		return
	}
	if !user.Is2FAEnabled {
		writeError(w, http.StatusBadRequest, "This user's 2FA already disabled")
		return
	}

	fields := map[string]any{
		"is_2FA_enabled":        false,
		"is_2FA_login_verified": true,
		"google_auth_secret":    "",
	}
	if !h.updateOr500(w, r, user.ID, fields, "users.2fa") {
		return
	}
	h.reloadAndRespond(w, r, user.ID, "User's Google 2FA Disabled successfully")
}

// BanUser 封禁用户
func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "User not found")
	if !ok {
		return
	}
	if user.IsBanned {
		writeError(w, http.StatusBadRequest, "User already blocked")
		return
	}
	if !h.updateOr500(w, r, user.ID, map[string]any{"is_banned": true}, "users.ban") {
		return
	}
	h.reloadAndRespond(w, r, user.ID, "User Blocked successfully")
}

// ActivateUser 解封用户，要求邮箱与手机都已验证
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "User not found")
	if !ok {
		return
	}
	if !user.IsBanned {
		writeError(w, http.StatusBadRequest, "User status already active")
		return
	}
	if user.EmailVerified.IsUnverified() {
		writeError(w, http.StatusBadRequest, "User Email Unverified")
		return
	}
	if user.PhoneVerified.IsUnverified() {
		writeError(w, http.StatusBadRequest, "User Mobile Unverified")
		return
	}
	if !h.updateOr500(w, r, user.ID, map[string]any{"is_banned": false}, "users.active") {
		return
	}
	h.reloadAndRespond(w, r, user.ID, "User Status Activated successfully")
}

// EmailVerified 管理员手工标记用户邮箱已验证
func (h *Handler) EmailVerified(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "User not found")
	if !ok {
		return
	}
	if user.Email == "" {
		writeError(w, http.StatusBadRequest, "Email isn't exists")
		return
	}
	if user.EmailVerified.IsVerified() {
		writeError(w, http.StatusBadRequest, "User email already verified")
		return
	}
	if !h.updateOr500(w, r, user.ID, map[string]any{"email_verified": 1}, "users.emailverify") {
		return
	}
	h.reloadAndRespond(w, r, user.ID, "User Email Verified successfully")
}

// MobileVerified 管理员手工标记用户手机已验证
func (h *Handler) MobileVerified(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "User not found")
	if !ok {
		return
	}
	if user.Phone == "" {
		writeError(w, http.StatusBadRequest, "Phone isn't exists")
		return
	}
	if user.PhoneVerified.IsVerified() {
		writeError(w, http.StatusBadRequest, "User Phone already verified")
		return
	}
	if !h.updateOr500(w, r, user.ID, map[string]any{"phone_verified": 1}, "users.mobileverify") {
		return
	}
	h.reloadAndRespond(w, r, user.ID, "User Phone Verified successfully")
}

// ============================================================================
// 公共辅助
// ============================================================================

// mustGetUser 取路径参数 id 对应的用户，不存在时写 404 并返回 false
func (h *Handler) mustGetUser(w http.ResponseWriter, r *http.Request, notFoundMsg string) (*model.User, bool) {
	id := r.PathValue("id")
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		log.Printf("[users] GetUser %s error: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return nil, false
	}
	return user, true
}

func (h *Handler) updateOr500(w http.ResponseWriter, r *http.Request, id string, fields map[string]any, tag string) bool {
	if err := h.users.UpdateUserFields(r.Context(), id, fields); err != nil {
		log.Printf("[%s] UpdateUserFields error: %v", tag, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// reloadAndRespond 回读用户并作为响应主体返回
func (h *Handler) reloadAndRespond(w http.ResponseWriter, r *http.Request, id, message string) {
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil || user == nil {
		log.Printf("[users] reload user %s error: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.respondUser(w, r, user, message)
}

// respondUser 返回用户详情，头像 key 附带签名 URL
func (h *Handler) respondUser(w http.ResponseWriter, r *http.Request, user *model.User, message string) {
	imageURL, err := h.objects.PresignedGetURL(r.Context(), user.Profile)
	if err != nil {
		log.Printf("[users] presign profile error: %v", err)
		imageURL = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  message,
		"User":     user,
		"imageUrl": imageURL,
	})
}

// listQueryFromRequest 从 query string 解析分页与筛选参数
func listQueryFromRequest(r *http.Request, defaultSize int) storage.ListQuery {
	q := storage.ListQuery{
		Search: r.URL.Query().Get("query"),
		Status: r.URL.Query().Get("statusFilter"),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		q.PageSize = v
	}
	return q.Normalize(defaultSize)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
