package server

import (
	"net/http"
	"time"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/auth"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/report"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/users"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//   - GET /metrics - Prometheus 指标
//
// 认证 (公开):
//   - GET  /auth/getuser/{address}   - 公开用户名片
//   - POST /auth/forgotpassword      - 找回密码 OTP
//   - POST /auth/checkOTP            - 校验 OTP
//   - POST /auth/resetPassword       - 重置密码
//   - POST /auth/adminlogin          - 管理员登录（节流）
//   - POST /auth/adminlogout         - 管理员登出（节流）
//
// 用户管理 (需要 Bearer 令牌 + roleid 头):
//   - GET  /users/userList            - 用户分页列表
//   - PUT  /users/updateUser/{id}     - 更新资料（节流）
//   - GET  /users/getUserById/{id}    - 用户详情
//   - GET  /users/getLoginHistory/{id} - 登录历史
//   - POST /users/twoFADisableUser/{id} - 关闭 2FA（节流）
//   - GET  /users/getUsersCount       - 用户总数
//   - PUT  /users/bannedUser/{id}     - 封禁
//   - PUT  /users/activeUser/{id}     - 解封
//   - PUT  /users/userEmailVerified/{id}  - 标记邮箱已验证
//   - PUT  /users/userMobileVerified/{id} - 标记手机已验证
//   - GET  /users/acceptKyc/{id}      - 通过 KYC
//   - POST /users/rejectKyc/{id}      - 驳回 KYC
//   - GET  /users/kycUserList         - KYC 列表
//   - GET  /users/viewKyc/{id}        - KYC 详情
//   - GET  /users/deleteKyc/{id}      - 删除 KYC
//   - GET  /users/reportedUsers       - 举报列表
//   - GET  /users/reportedUsers/{address} - 单地址举报
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查与指标
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler())

	// 节流包装器，主体取认证上下文中的管理员 ID（匿名时为空串）
	throttled := func(next http.HandlerFunc) http.HandlerFunc {
		return h.guard.Middleware(auth.Principal, next)
	}

	// 认证接口（公开）
	authHandler := auth.NewHandler(h.store, h.store, h.store, h.objects, h.mail, h.authCfg)
	authHandler.RegisterRoutes(mux, throttled)

	// 用户管理与举报接口，整体挂在认证中间件之后
	protected := http.NewServeMux()
	usersHandler := users.NewHandler(h.store, h.store, h.objects, h.mail)
	usersHandler.RegisterRoutes(protected, throttled)
	reportHandler := report.NewHandler(h.store)
	reportHandler.RegisterRoutes(protected)

	authed := auth.Middleware(h.authCfg, h.store)(protected)
	mux.Handle("/users/", authed)

	// 请求日志与指标中间件覆盖全部路由
	apiHandler := h.requestLogMiddleware(h.metrics.MetricsMiddleware(mux))

	return corsMiddleware(apiHandler)
}

// requestLogMiddleware 记录每个请求的访问日志
func (h *Handler) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		h.logger.HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), r.RemoteAddr)
		if wrapped.statusCode == http.StatusTooManyRequests {
			h.logger.ThrottleLog(r.RemoteAddr, r.URL.Path)
		}
	})
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, roleid")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
