package auth

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/model"
)

// TokenLookup 校验令牌记录是否仍然有效（未被登出吊销）
type TokenLookup interface {
	GetToken(ctx context.Context, token string, roleID int) (*model.Token, error)
}

// bearerToken 从 Authorization 头取出 Bearer 令牌
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Middleware 创建令牌认证中间件，保护 /users 子树
//
// 请求需同时携带 Bearer 令牌与 roleid 头；令牌必须仍存在于 token
// 集合中（登出即删除）且 JWT 验签通过。通过后将 AuthAdmin 注入 context。
func Middleware(cfg Config, tokens TokenLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			roleID := r.Header.Get("roleid")
			if token == "" || roleID == "" {
				writeError(w, http.StatusUnauthorized, "Authorization Token or Role ID not found")
				return
			}

			role, err := strconv.Atoi(roleID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Authorization Token or Role ID not found")
				return
			}

			// 令牌记录被登出删除后立即失效，不等 JWT 过期
			record, err := tokens.GetToken(r.Context(), token, role)
			if err != nil {
				log.Printf("[auth] token lookup error: %v", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if record == nil {
				writeError(w, http.StatusUnauthorized, "Authorization Token not valid.")
				return
			}

			claims, err := ParseToken(cfg, token)
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				writeError(w, http.StatusUnauthorized, "Authorization Token not valid.")
				return
			}

			admin := &AuthAdmin{
				ID:       claims.Subject,
				Username: claims.Username,
				Access:   claims.Access,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthAdmin(r.Context(), admin)))
		})
	}
}

// Principal 节流主体：认证管理员的 ID，未认证时为空串
//
// 空主体意味着所有匿名调用方共享同一节流桶（按路由）。
func Principal(r *http.Request) string {
	if admin := GetAuthAdmin(r.Context()); admin != nil {
		return admin.ID
	}
	return ""
}
