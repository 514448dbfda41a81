package storage

import "strings"

// 列表状态筛选值
//
// 用户列表与 KYC 列表各自使用一组封闭的命名筛选，
// 未识别的取值等价于不加状态约束。
const (
	FilterActive = "Active"
	FilterBan    = "Ban"
	FilterEmail  = "Email"
	FilterMobile = "Mobile"

	FilterAll      = "All"
	FilterPending  = "Pending"
	FilterApproved = "Approved"
	FilterRejected = "Rejected"
)

// ListQuery 一次列表请求的分页/搜索/筛选参数
//
// 前端历史原因，query 参数会传来空串或字面量 "null" 表示无搜索，
// Normalize 将两者统一为"无搜索"。
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// Normalize 规范化查询参数：裁剪搜索词、归一化哨兵值、填充默认分页
//
// defaultSize 为端点各自的默认页大小（用户列表 5，登录历史 10）。
func (q ListQuery) Normalize(defaultSize int) ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Search == "null" || q.Search == "undefined" {
		q.Search = ""
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultSize
	}
	return q
}

// HasSearch 是否带搜索词
func (q ListQuery) HasSearch() bool {
	return q.Search != ""
}

// Skip 当前页跳过的记录数
func (q ListQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.PageSize)
}

// Limit 页大小
func (q ListQuery) Limit() int64 {
	return int64(q.PageSize)
}
