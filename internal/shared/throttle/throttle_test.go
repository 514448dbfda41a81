package throttle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGuard 创建节流器并接管时钟
//
// 假时钟以真实当前时间为基准：MemoryStore 的惰性过期用真实时钟判断，
// 基准偏得太远会把测试写入的条目当成已过期清掉。
func testGuard(window time.Duration) (*Guard, *time.Time) {
	now := time.Now()
	g := NewGuard(NewMemoryStore(), window)
	g.now = func() time.Time { return now }
	return g, &now
}

func TestGuard_FirstRequestAllowed(t *testing.T) {
	g, _ := testGuard(55 * time.Second)
	assert.True(t, g.Allow(context.Background(), "admin-1", "/auth/adminlogin"))
}

func TestGuard_SecondRequestInWindowRejected(t *testing.T) {
	g, now := testGuard(55 * time.Second)
	ctx := context.Background()

	require.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))
	assert.False(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))

	// 窗口内任意时刻仍被拒绝
	*now = now.Add(54 * time.Second)
	assert.False(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))
}

func TestGuard_AllowedAfterWindowElapsed(t *testing.T) {
	g, now := testGuard(55 * time.Second)
	ctx := context.Background()

	require.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))

	// next_allowed_at 是边界本身，等于边界时仍拒绝，越过才放行
	*now = now.Add(55 * time.Second)
	assert.False(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))

	*now = now.Add(time.Second)
	assert.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))
}

func TestGuard_AdmissionResetsWindow(t *testing.T) {
	g, now := testGuard(55 * time.Second)
	ctx := context.Background()

	require.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))

	// 放行会重置窗口：第二次放行后紧跟的请求再次进入冷却
	*now = now.Add(56 * time.Second)
	require.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))
	assert.False(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))
}

func TestGuard_KeysAreIndependent(t *testing.T) {
	g, _ := testGuard(55 * time.Second)
	ctx := context.Background()

	require.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogin"))

	// 不同主体、不同路由互不影响
	assert.True(t, g.Allow(ctx, "admin-2", "/auth/adminlogin"))
	assert.True(t, g.Allow(ctx, "admin-1", "/auth/adminlogout"))
}

func TestGuard_AnonymousShareBucket(t *testing.T) {
	g, _ := testGuard(55 * time.Second)
	ctx := context.Background()

	require.True(t, g.Allow(ctx, "", "/auth/adminlogin"))
	assert.False(t, g.Allow(ctx, "", "/auth/adminlogin"))
}

// failingStore 模拟存储故障
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	return time.Time{}, false, context.DeadlineExceeded
}
func (failingStore) Set(ctx context.Context, key string, next time.Time, ttl time.Duration) error {
	return context.DeadlineExceeded
}
func (failingStore) Delete(ctx context.Context, key string) error {
	return context.DeadlineExceeded
}

func TestGuard_FailOpenOnStoreError(t *testing.T) {
	g := NewGuard(failingStore{}, 55*time.Second)

	assert.True(t, g.Allow(context.Background(), "admin-1", "/auth/adminlogin"))
	assert.True(t, g.Allow(context.Background(), "admin-1", "/auth/adminlogin"))
}

func TestGuard_DefaultWindow(t *testing.T) {
	g := NewGuard(NewMemoryStore(), 0)
	assert.Equal(t, DefaultWindow, g.window)
}

func TestMiddleware_Rejects429WithBody(t *testing.T) {
	g, _ := testGuard(55 * time.Second)

	var calls int
	handler := g.Middleware(
		func(*http.Request) string { return "admin-1" },
		func(w http.ResponseWriter, r *http.Request) { calls++; w.WriteHeader(http.StatusOK) },
	)

	req := httptest.NewRequest("POST", "/auth/adminlogin", nil)

	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, calls)

	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, 1, calls)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(429), body["statusCode"])
	assert.Equal(t, "Too Many Requests. Please Try after sometimes", body["message"])
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", time.Now().Add(-time.Second), 55*time.Second))

	// 过期条目在读取时清理
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}
