// Package report 用户举报查询接口
package report

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage"
)

// Handler 举报查询 HTTP 处理器
type Handler struct {
	reports storage.ReportStore
}

// NewHandler 创建举报查询处理器
func NewHandler(reports storage.ReportStore) *Handler {
	return &Handler{reports: reports}
}

// RegisterRoutes 注册 /users/reportedUsers 路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/reportedUsers", h.ReportedUsers)
	mux.HandleFunc("GET /users/reportedUsers/{address}", h.ReportedUsersByAddress)
}

// ReportedUsers 全部举报记录分页，含举报双方别名
func (h *Handler) ReportedUsers(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)

	reports, err := h.reports.ListReports(r.Context(), q)
	if err != nil {
		log.Printf("[report.list] ListReports error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	count, err := h.reports.CountReports(r.Context(), q.Search)
	if err != nil {
		log.Printf("[report.list] CountReports error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Reported users found successfully",
		"reports":           reports,
		"totalReportsCount": count,
	})
}

// ReportedUsersByAddress 针对单个钱包地址的被举报记录
func (h *Handler) ReportedUsersByAddress(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	q := listQueryFromRequest(r)

	reports, err := h.reports.ListReportsByAddress(r.Context(), address, q)
	if err != nil {
		log.Printf("[report.byaddress] ListReportsByAddress error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	count, err := h.reports.CountReportsByAddress(r.Context(), address)
	if err != nil {
		log.Printf("[report.byaddress] CountReportsByAddress error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Reported users found successfully",
		"reports":           reports,
		"totalReportsCount": count,
	})
}

func listQueryFromRequest(r *http.Request) storage.ListQuery {
	q := storage.ListQuery{Search: r.URL.Query().Get("query")}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		q.PageSize = v
	}
	return q.Normalize(5)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
