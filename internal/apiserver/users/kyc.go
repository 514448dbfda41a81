package users

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
)

// AcceptKYC 通过 KYC 审核
func (h *Handler) AcceptKYC(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "KYC not found")
	if !ok {
		return
	}
	if user.IsVerified == model.KYCApproved {
		writeError(w, http.StatusBadRequest, "User's KYC already Approved")
		return
	}

	fields := map[string]any{
		"is_verified":      int(model.KYCApproved),
		"admin_checked_at": time.Now().UTC(),
	}
	if !h.updateOr500(w, r, user.ID, fields, "users.acceptkyc") {
		return
	}
	h.reloadAndRespond(w, r, user.ID, "User's KYC Approved successfully")
}

type rejectKYCRequest struct {
	Message string `json:"message"`
}

// RejectKYC 驳回 KYC 审核并邮件通知用户
//
// 邮件失败只记日志，审核状态已落库。
func (h *Handler) RejectKYC(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "KYC not found")
	if !ok {
		return
	}
	if user.IsKYCDeleted {
		writeError(w, http.StatusNotFound, "KYC not found")
		return
	}
	if user.IsVerified == model.KYCApproved {
		writeError(w, http.StatusBadRequest, "User's KYC already Approved")
		return
	}
	if user.IsVerified == model.KYCRejected {
		writeError(w, http.StatusBadRequest, "User's KYC already Rejected")
		return
	}

	var req rejectKYCRequest
	if r.Body != nil {
		// 驳回原因可选，解析失败按未填写处理
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	reason := req.Message
	if reason == "" {
		reason = "Reason not added"
	}

	fields := map[string]any{
		"is_verified":      int(model.KYCRejected),
		"admin_checked_at": time.Now().UTC(),
	}
	if !h.updateOr500(w, r, user.ID, fields, "users.rejectkyc") {
		return
	}

	if user.Email != "" {
		if err := h.mail.Send(r.Context(), user.Email, "Middn :: Your KYC has been rejected", "message", map[string]string{
			"title":   "Sorry !!! Your KYC has been Rejected",
			"message": reason,
		}); err != nil {
			log.Printf("[users.rejectkyc] mail error: %v", err)
		}
	}

	h.reloadAndRespond(w, r, user.ID, "User's KYC Rejected successfully")
}

// KYCUserList 已提交 KYC 的用户分页列表
func (h *Handler) KYCUserList(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r, 5)

	usersData, err := h.users.ListKYCUsers(r.Context(), q)
	if err != nil {
		log.Printf("[users.kyclist] ListKYCUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	count, err := h.users.CountKYCUsers(r.Context(), q.Search, q.Status)
	if err != nil {
		log.Printf("[users.kyclist] CountKYCUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "User found successfully",
		"users":           usersData,
		"totalUsersCount": count,
	})
}

// ViewKYC KYC 详情，证件照与手持照下发限时签名 URL
func (h *Handler) ViewKYC(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "KYC not found")
	if !ok {
		return
	}
	if user.IsKYCDeleted {
		writeError(w, http.StatusNotFound, "KYC not found")
		return
	}

	passportURL, err := h.objects.PresignedGetURL(r.Context(), user.PassportURL)
	if err != nil {
		log.Printf("[users.viewkyc] presign passport error: %v", err)
		passportURL = ""
	}
	photoURL, err := h.objects.PresignedGetURL(r.Context(), user.UserPhotoURL)
	if err != nil {
		log.Printf("[users.viewkyc] presign photo error: %v", err)
		photoURL = ""
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "User found successfully",
		"user":           user,
		"passport_url":   passportURL,
		"user_photo_url": photoURL,
	})
}

// DeleteKYC 删除用户 KYC 资料并复位审核状态
func (h *Handler) DeleteKYC(w http.ResponseWriter, r *http.Request) {
	user, ok := h.mustGetUser(w, r, "KYC not found")
	if !ok {
		return
	}
	if user.IsKYCDeleted {
		writeError(w, http.StatusBadRequest, "User's KYC already deleted")
		return
	}

	fields := map[string]any{
		"mname":            "",
		"res_address":      "",
		"postal_code":      "",
		"city":             "",
		"country_of_issue": "",
		"verified_with":    "",
		"passport_url":     "",
		"user_photo_url":   "",
		"is_kyc_deleted":   true,
		"kyc_completed":    false,
		"is_verified":      int(model.KYCPending),
	}
	if !h.updateOr500(w, r, user.ID, fields, "users.deletekyc") {
		return
	}

	log.Printf("[users.deletekyc] KYC deleted for user %s", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User KYC deleted successfully...",
	})
}
