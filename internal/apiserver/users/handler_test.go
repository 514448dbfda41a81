package users

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// mockUserStore 内存用户存储，只实现处理器用到的路径
type mockUserStore struct {
	users   map[string]*model.User
	updates []map[string]any // 记录每次 UpdateUserFields 的字段
}

func newMockUserStore(users ...*model.User) *mockUserStore {
	m := &mockUserStore{users: map[string]*model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserStore) GetUserByWallet(ctx context.Context, address string) (*model.User, error) {
	for _, u := range m.users {
		if u.WalletAddress == address {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) UpdateUserFields(ctx context.Context, id string, fields map[string]any) error {
	u, ok := m.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	m.updates = append(m.updates, fields)
	applyFields(u, fields)
	return nil
}

// applyFields 模拟 $set 语义，覆盖处理器会写的字段
func applyFields(u *model.User, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "fname":
			u.FName = v.(string)
		case "lname":
			u.LName = v.(string)
		case "email":
			u.Email = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "phoneCountry":
			u.PhoneCountry = v.(string)
		case "profile":
			u.Profile = v.(string)
		case "is_banned":
			u.IsBanned = v.(bool)
		case "is_verified":
			u.IsVerified = model.KYCStatus(v.(int))
		case "is_2FA_enabled":
			u.Is2FAEnabled = v.(bool)
		case "google_auth_secret":
			u.GoogleAuthSecret = v.(string)
		case "email_verified":
			f := model.VerifyFlag(v.(int))
			u.EmailVerified = &f
		case "phone_verified":
			f := model.VerifyFlag(v.(int))
			u.PhoneVerified = &f
		case "is_kyc_deleted":
			u.IsKYCDeleted = v.(bool)
		case "kyc_completed":
			u.KYCCompleted = v.(bool)
		case "passport_url":
			u.PassportURL = v.(string)
		case "user_photo_url":
			u.UserPhotoURL = v.(string)
		}
	}
}

func (m *mockUserStore) EmailTaken(ctx context.Context, excludeID, email string) (bool, error) {
	for _, u := range m.users {
		if u.ID != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserStore) PhoneTaken(ctx context.Context, excludeID, phone string) (bool, error) {
	for _, u := range m.users {
		if u.ID != excludeID && u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserStore) ListUsers(ctx context.Context, q storage.ListQuery) ([]*model.User, error) {
	out := []*model.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) CountUsers(ctx context.Context, search, status string) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserStore) UserDashboardCounts(ctx context.Context) (*storage.UserCounts, error) {
	counts := &storage.UserCounts{Total: int64(len(m.users))}
	for _, u := range m.users {
		if u.IsBanned {
			counts.Ban++
			continue
		}
		if u.EmailVerified.IsVerified() && u.PhoneVerified.IsVerified() {
			counts.Active++
		}
		if u.EmailVerified.IsUnverified() {
			counts.Email++
		}
		if u.PhoneVerified.IsUnverified() {
			counts.Phone++
		}
	}
	return counts, nil
}

func (m *mockUserStore) ListKYCUsers(ctx context.Context, q storage.ListQuery) ([]*model.User, error) {
	out := []*model.User{}
	for _, u := range m.users {
		if u.KYCCompleted {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserStore) CountKYCUsers(ctx context.Context, search, status string) (int64, error) {
	users, _ := m.ListKYCUsers(ctx, storage.ListQuery{})
	return int64(len(users)), nil
}

type mockHistoryStore struct {
	rows []*model.LoginHistoryView
}

func (m *mockHistoryStore) ListLoginHistory(ctx context.Context, userID string, q storage.ListQuery) ([]*model.LoginHistoryView, error) {
	return m.rows, nil
}

func (m *mockHistoryStore) CountLoginHistory(ctx context.Context, userID string) (int64, error) {
	return int64(len(m.rows)), nil
}

type mockObjects struct {
	uploaded map[string][]byte
}

func (m *mockObjects) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(reader)
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[key] = data
	return nil
}

func (m *mockObjects) PresignedGetURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://cdn.test/" + key, nil
}

type recordingMailer struct {
	sent []map[string]string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, templateName string, data map[string]string) error {
	m.sent = append(m.sent, map[string]string{
		"to": to, "subject": subject, "template": templateName, "message": data["message"],
	})
	return nil
}

// ============================================================================
// Fixtures
// ============================================================================

func verified() *model.VerifyFlag {
	f := model.VerifyFlag(1)
	return &f
}

func unverified() *model.VerifyFlag {
	f := model.VerifyFlag(0)
	return &f
}

func testHandler(users ...*model.User) (*Handler, *mockUserStore, *mockObjects, *recordingMailer) {
	store := newMockUserStore(users...)
	objects := &mockObjects{}
	mail := &recordingMailer{}
	h := NewHandler(store, &mockHistoryStore{}, objects, mail)
	return h, store, objects, mail
}

func doRequest(h http.HandlerFunc, method, path, id string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if id != "" {
		req.SetPathValue("id", id)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

// ============================================================================
// 列表
// ============================================================================

func TestUserList_ResponseShape(t *testing.T) {
	h, _, _, _ := testHandler(
		&model.User{ID: "u1", EmailVerified: verified(), PhoneVerified: verified()},
		&model.User{ID: "u2", IsBanned: true},
	)

	rec, body := doRequest(h.UserList, "GET", "/users/userList?page=1&pageSize=5", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User found successfully", body["message"])
	assert.Len(t, body["users"], 2)
	assert.Equal(t, float64(2), body["totalUsersCount"])
	assert.Equal(t, float64(2), body["totalUser"])
	assert.Equal(t, float64(1), body["activeCount"])
	assert.Equal(t, float64(1), body["banCount"])
}

func TestGetUserByID(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{ID: "u1", Profile: "avatar.png"})

	rec, body := doRequest(h.GetUserByID, "GET", "/users/getUserById/u1", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.test/avatar.png", body["imageUrl"])
}

func TestGetUserByID_NotFound(t *testing.T) {
	h, _, _, _ := testHandler()

	rec, _ := doRequest(h.GetUserByID, "GET", "/users/getUserById/nope", "nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLoginHistory(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{ID: "u1"})

	rec, body := doRequest(h.GetLoginHistory, "GET", "/users/getLoginHistory/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["loginHistoryCount"])

	rec, body = doRequest(h.GetLoginHistory, "GET", "/users/getLoginHistory/missing", "missing", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found.", body["message"])
}

// ============================================================================
// 资料更新校验
// ============================================================================

func validUpdateBody() map[string]string {
	return map[string]string{
		"fname":        "Alice",
		"lname":        "Smith",
		"email":        "alice@test.io",
		"phone":        "9876543210",
		"phoneCountry": "+91",
	}
}

func TestUpdateUser_ValidationMessages(t *testing.T) {
	h, _, _, _ := testHandler(
		&model.User{ID: "u1", Email: "old@test.io", Phone: "1111111111"},
		&model.User{ID: "u2", Email: "taken@test.io", Phone: "2222222222"},
	)

	cases := []struct {
		name    string
		mutate  func(map[string]string)
		message string
	}{
		{"missing fname", func(b map[string]string) { b["fname"] = "  " }, "Please enter first name."},
		{"missing lname", func(b map[string]string) { b["lname"] = "" }, "Please enter last name."},
		{"missing country", func(b map[string]string) { b["phoneCountry"] = "" }, "Please enter country code."},
		{"missing email", func(b map[string]string) { b["email"] = "" }, "Please enter email."},
		{"bad email", func(b map[string]string) { b["email"] = "not-an-email" }, "Invalid E-mail address."},
		{"email taken", func(b map[string]string) { b["email"] = "taken@test.io" }, "Email already Exist."},
		{"missing phone", func(b map[string]string) { b["phone"] = "" }, "Please enter phone number."},
		{"short phone", func(b map[string]string) { b["phone"] = "123" }, "Invalid Phone."},
		{"alpha phone", func(b map[string]string) { b["phone"] = "12345abc" }, "Invalid Phone."},
		{"phone taken", func(b map[string]string) { b["phone"] = "2222222222" }, "Phone already Exist."},
		{"bad country", func(b map[string]string) { b["phoneCountry"] = "+999" }, "Invalid country code."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validUpdateBody()
			tc.mutate(body)
			rec, out := doRequest(h.UpdateUser, "PUT", "/users/updateUser/u1", "u1", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, out["message"])
		})
	}
}

func TestUpdateUser_Success(t *testing.T) {
	h, store, _, _ := testHandler(&model.User{ID: "u1", Email: "old@test.io", Phone: "1111111111"})

	rec, body := doRequest(h.UpdateUser, "PUT", "/users/updateUser/u1", "u1", validUpdateBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Users has been successfully updated.", body["message"])
	assert.Equal(t, "Alice", store.users["u1"].FName)
	assert.Equal(t, "alice@test.io", store.users["u1"].Email)
}

func TestUpdateUser_KeepingOwnEmailAllowed(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{ID: "u1", Email: "alice@test.io", Phone: "9876543210"})

	// 不改邮箱/手机时不应误报重复
	rec, _ := doRequest(h.UpdateUser, "PUT", "/users/updateUser/u1", "u1", validUpdateBody())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateUser_NotFound(t *testing.T) {
	h, _, _, _ := testHandler()

	rec, _ := doRequest(h.UpdateUser, "PUT", "/users/updateUser/nope", "nope", validUpdateBody())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// 状态流转
// ============================================================================

func TestBanUser(t *testing.T) {
	h, store, _, _ := testHandler(&model.User{ID: "u1"})

	rec, body := doRequest(h.BanUser, "PUT", "/users/bannedUser/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User Blocked successfully", body["message"])
	assert.True(t, store.users["u1"].IsBanned)

	// 重复封禁是冲突
	rec, body = doRequest(h.BanUser, "PUT", "/users/bannedUser/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already blocked", body["message"])
}

func TestActivateUser(t *testing.T) {
	h, store, _, _ := testHandler(&model.User{
		ID: "u1", IsBanned: true,
		EmailVerified: verified(), PhoneVerified: verified(),
	})

	rec, body := doRequest(h.ActivateUser, "PUT", "/users/activeUser/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User Status Activated successfully", body["message"])
	assert.False(t, store.users["u1"].IsBanned)

	rec, body = doRequest(h.ActivateUser, "PUT", "/users/activeUser/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User status already active", body["message"])
}

func TestActivateUser_RequiresVerification(t *testing.T) {
	h, _, _, _ := testHandler(
		&model.User{ID: "u1", IsBanned: true},
		&model.User{ID: "u2", IsBanned: true, EmailVerified: verified(), PhoneVerified: unverified()},
	)

	// email_verified 缺失
	rec, body := doRequest(h.ActivateUser, "PUT", "/users/activeUser/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User Email Unverified", body["message"])

	// phone_verified 显式为 0
	rec, body = doRequest(h.ActivateUser, "PUT", "/users/activeUser/u2", "u2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User Mobile Unverified", body["message"])
}

func TestTwoFADisable(t *testing.T) {
	h, store, _, _ := testHandler(&model.User{ID: "u1", Is2FAEnabled: true, GoogleAuthSecret: "secret"})

	rec, body := doRequest(h.TwoFADisableUser, "POST", "/users/twoFADisableUser/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User's Google 2FA Disabled successfully", body["message"])
	assert.False(t, store.users["u1"].Is2FAEnabled)
	assert.Empty(t, store.users["u1"].GoogleAuthSecret)

	rec, body = doRequest(h.TwoFADisableUser, "POST", "/users/twoFADisableUser/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This user's 2FA already disabled", body["message"])
}

func TestEmailVerified(t *testing.T) {
	h, store, _, _ := testHandler(
		&model.User{ID: "u1", Email: "a@b.io"},
		&model.User{ID: "u2"},
		&model.User{ID: "u3", Email: "c@d.io", EmailVerified: verified()},
	)

	rec, body := doRequest(h.EmailVerified, "PUT", "/users/userEmailVerified/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User Email Verified successfully", body["message"])
	assert.True(t, store.users["u1"].EmailVerified.IsVerified())

	rec, body = doRequest(h.EmailVerified, "PUT", "/users/userEmailVerified/u2", "u2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email isn't exists", body["message"])

	rec, body = doRequest(h.EmailVerified, "PUT", "/users/userEmailVerified/u3", "u3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User email already verified", body["message"])
}

func TestMobileVerified(t *testing.T) {
	h, _, _, _ := testHandler(
		&model.User{ID: "u1"},
		&model.User{ID: "u2", Phone: "12345", PhoneVerified: verified()},
	)

	rec, body := doRequest(h.MobileVerified, "PUT", "/users/userMobileVerified/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Phone isn't exists", body["message"])

	rec, body = doRequest(h.MobileVerified, "PUT", "/users/userMobileVerified/u2", "u2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User Phone already verified", body["message"])
}

// ============================================================================
// KYC 审核
// ============================================================================

func TestAcceptKYC(t *testing.T) {
	h, store, _, _ := testHandler(&model.User{ID: "u1", KYCCompleted: true})

	rec, _ := doRequest(h.AcceptKYC, "GET", "/users/acceptKyc/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.KYCApproved, store.users["u1"].IsVerified)

	// admin_checked_at 随审核写入
	require.NotEmpty(t, store.updates)
	_, hasCheckedAt := store.updates[len(store.updates)-1]["admin_checked_at"]
	assert.True(t, hasCheckedAt)

	rec, body := doRequest(h.AcceptKYC, "GET", "/users/acceptKyc/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User's KYC already Approved", body["message"])
}

func TestRejectKYC(t *testing.T) {
	h, store, _, mail := testHandler(&model.User{ID: "u1", KYCCompleted: true, Email: "u@test.io"})

	rec, _ := doRequest(h.RejectKYC, "POST", "/users/rejectKyc/u1", "u1", map[string]string{"message": "blurry document"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.KYCRejected, store.users["u1"].IsVerified)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "u@test.io", mail.sent[0]["to"])
	assert.Equal(t, "message", mail.sent[0]["template"])
	assert.Equal(t, "blurry document", mail.sent[0]["message"])
}

func TestRejectKYC_AlreadyRejectedConflictLeavesRecordUnchanged(t *testing.T) {
	h, store, _, mail := testHandler(&model.User{
		ID: "u1", KYCCompleted: true, IsVerified: model.KYCRejected, Email: "u@test.io",
	})

	rec, body := doRequest(h.RejectKYC, "POST", "/users/rejectKyc/u1", "u1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User's KYC already Rejected", body["message"])
	assert.Empty(t, store.updates)
	assert.Empty(t, mail.sent)
}

func TestRejectKYC_DeletedIsNotFound(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{ID: "u1", IsKYCDeleted: true})

	rec, body := doRequest(h.RejectKYC, "POST", "/users/rejectKyc/u1", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "KYC not found", body["message"])
}

func TestRejectKYC_AlreadyApprovedConflict(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{ID: "u1", IsVerified: model.KYCApproved})

	rec, body := doRequest(h.RejectKYC, "POST", "/users/rejectKyc/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User's KYC already Approved", body["message"])
}

func TestViewKYC(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{
		ID: "u1", KYCCompleted: true,
		PassportURL: "passport.jpg", UserPhotoURL: "photo.jpg",
	})

	rec, body := doRequest(h.ViewKYC, "GET", "/users/viewKyc/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.test/passport.jpg", body["passport_url"])
	assert.Equal(t, "https://cdn.test/photo.jpg", body["user_photo_url"])
}

func TestViewKYC_DeletedIsNotFound(t *testing.T) {
	h, _, _, _ := testHandler(&model.User{ID: "u1", IsKYCDeleted: true})

	rec, _ := doRequest(h.ViewKYC, "GET", "/users/viewKyc/u1", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteKYC(t *testing.T) {
	h, store, _, _ := testHandler(&model.User{
		ID: "u1", KYCCompleted: true, IsVerified: model.KYCApproved,
		PassportURL: "passport.jpg", UserPhotoURL: "photo.jpg", City: "Pune",
	})

	rec, body := doRequest(h.DeleteKYC, "GET", "/users/deleteKyc/u1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User KYC deleted successfully...", body["message"])

	u := store.users["u1"]
	assert.True(t, u.IsKYCDeleted)
	assert.False(t, u.KYCCompleted)
	assert.Equal(t, model.KYCPending, u.IsVerified)
	assert.Empty(t, u.PassportURL)
	assert.Empty(t, u.UserPhotoURL)

	rec, body = doRequest(h.DeleteKYC, "GET", "/users/deleteKyc/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User's KYC already deleted", body["message"])
}

func TestKYCUserList(t *testing.T) {
	h, _, _, _ := testHandler(
		&model.User{ID: "u1", KYCCompleted: true},
		&model.User{ID: "u2"},
	)

	rec, body := doRequest(h.KYCUserList, "GET", "/users/kycUserList", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["users"], 1)
	assert.Equal(t, float64(1), body["totalUsersCount"])
}

// ============================================================================
// Multipart 头像上传
// ============================================================================

// newMultipartBody 构造带字段与单个文件的 multipart 请求体，返回 Content-Type
func newMultipartBody(t *testing.T, buf *bytes.Buffer, fields map[string]string, fileField, filename string, content []byte) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}

func TestUpdateUser_MultipartWithProfileUpload(t *testing.T) {
	h, store, objects, _ := testHandler(&model.User{ID: "u1"})

	var buf bytes.Buffer
	mw := newMultipartBody(t, &buf, validUpdateBody(), "profile", "avatar.png", []byte("png-bytes"))

	req := httptest.NewRequest("PUT", "/users/updateUser/u1", &buf)
	req.Header.Set("Content-Type", mw)
	req.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	h.UpdateUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// 上传 key 带时间戳前缀并写进用户资料
	require.Len(t, objects.uploaded, 1)
	key := store.users["u1"].Profile
	require.NotEmpty(t, key)
	assert.Contains(t, key, "_avatar.png")
	assert.Equal(t, []byte("png-bytes"), objects.uploaded[key])
}
