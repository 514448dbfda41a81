// Package throttle 敏感路由的请求节流
//
// 以 (主体, 路由) 为键记录下一次允许访问的时间点，窗口内的重复请求
// 返回 429。状态存储通过 Store 接口注入，内存实现仅适用于单进程部署，
// 多进程部署换用 Redis 实现即可，调用方无需改动。
package throttle

import (
	"context"
	"log"
	"net/http"
	"time"
)

// DefaultWindow 默认冷却窗口
const DefaultWindow = 55 * time.Second

// Store 节流状态存储
//
// Get 返回键对应的 next_allowed_at；不存在时 ok 为 false。
// Set 覆盖写入并附带 TTL（后端可借助 TTL 自动过期，内存实现惰性清理）。
type Store interface {
	Get(ctx context.Context, key string) (next time.Time, ok bool, err error)
	Set(ctx context.Context, key string, next time.Time, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Guard 按 (主体, 路由) 执行冷却窗口检查
type Guard struct {
	store  Store
	window time.Duration
	now    func() time.Time // 测试注入
}

// NewGuard 创建节流器，window <= 0 时使用 DefaultWindow
func NewGuard(store Store, window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{store: store, window: window, now: time.Now}
}

// key 组合主体与路由
//
// 未认证请求 principal 为空串：所有匿名调用方共享同一桶（按路由），
// 这是沿袭下来的策略选择，不是缺陷。
func key(principal, route string) string {
	return principal + "|" + route
}

// Allow 判定一次请求是否放行
//
// 放行时立即写入 next_allowed_at = now + window（准入时触发，而非拒绝时），
// 拒绝时不修改任何状态。同一键上的并发请求对时间戳做无锁读后写，
// 同一瞬间到达的两个请求可能都被放行——接受这一窄竞态。
// 存储故障一律放行：节流是保护措施，不应把后端故障放大为拒绝服务。
func (g *Guard) Allow(ctx context.Context, principal, route string) bool {
	k := key(principal, route)
	now := g.now()

	next, ok, err := g.store.Get(ctx, k)
	if err != nil {
		log.Printf("[throttle] store get failed, allowing request: %v", err)
		return true
	}
	if ok && !now.After(next) {
		return false
	}
	// 过期条目在此处被覆盖，等价于删除后重建
	if err := g.store.Set(ctx, k, now.Add(g.window), g.window); err != nil {
		log.Printf("[throttle] store set failed: %v", err)
	}
	return true
}

// Middleware 包装单个 http.HandlerFunc，主体取自认证中间件注入的上下文
//
// principalFrom 从请求中取节流主体（通常是 JWT 的 userId）。
func (g *Guard) Middleware(principalFrom func(*http.Request) string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.Allow(r.Context(), principalFrom(r), r.URL.Path) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"statusCode":429,"message":"Too Many Requests. Please Try after sometimes"}`))
			return
		}
		next(w, r)
	}
}
