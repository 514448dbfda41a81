// Package server 路由配置与核心基础设施
//
// 本包把各领域包（auth/users/report）的路由装配成完整的 HTTP 服务：
//   - handler.go: 路由装配、认证与节流中间件编排
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/auth"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/users"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/mailer"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/throttle"
	"github.com/khushbooKanha0301/Middn-Admin-BE/pkg/logging"
)

// Handler API 服务入口
//
// 聚合持久化存储、节流器、对象存储与邮件依赖，Router 负责装配路由。
type Handler struct {
	store   storage.PersistentStore
	guard   *throttle.Guard
	objects users.ObjectStore
	mail    mailer.Mailer
	authCfg auth.Config
	metrics *Metrics
	logger  *logging.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, guard *throttle.Guard, objects users.ObjectStore, mail mailer.Mailer, authCfg auth.Config) *Handler {
	return &Handler{
		store:   store,
		guard:   guard,
		objects: objects,
		mail:    mail,
		authCfg: authCfg,
		metrics: NewMetrics("middn_admin"),
		logger:  logging.Default("apiserver"),
	}
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
