package rest

// ErrorTypeRequest 非评论领域的请求错误（参数、状态不满足等）
const ErrorTypeRequest = "request"

// AdminComment 后台列表中的一行
type AdminComment struct {
	Comment
	Excerpt     string `json:"excerpt"`
	PostExcerpt string `json:"postExcerpt"`
	AuthorName  string `json:"authorName"`
	HasAvatar   bool   `json:"hasAvatar"`
	Highlighted bool   `json:"highlighted"` // 未读加粗
}

// AdminAlert 后台提示框
type AdminAlert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PendingDelete 待确认的永久删除
type PendingDelete struct {
	CommentID string `json:"commentId"`
	Message   string `json:"message"`
}

// ModerationView 后台审核视图
type ModerationView struct {
	Ready          bool           `json:"ready"`
	Published      []AdminComment `json:"published"`
	Censored       []AdminComment `json:"censored"`
	PublishedCount int            `json:"publishedCount"`
	CensoredCount  int            `json:"censoredCount"`
	PendingDelete  *PendingDelete `json:"pendingDelete,omitempty"`
	Alert          *AdminAlert    `json:"alert,omitempty"`
}

// ModerationViewResponse 后台审核视图响应
type ModerationViewResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Type    string          `json:"type,omitempty"`
	View    *ModerationView `json:"view,omitempty"`
}
