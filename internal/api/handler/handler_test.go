package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/service"
	apperrors "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/errors"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

type errorCase struct {
	name       string
	err        error
	wantStatus int
	wantCode   int
}

func runErrorCases(t *testing.T, cases []errorCase, handle func(c *gin.Context, err error)) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupGin()
			handle(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望业务码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// 错误映射
// ═══════════════════════════════════════════════════════════

func TestDemandeHandler_ErrorMapping(t *testing.T) {
	h := NewDemandeHandler(nil, zap.NewNop())
	runErrorCases(t, []errorCase{
		{"Forbidden", demande.ErrForbidden, 403, 12003},
		{"AlreadyDecided", demande.ErrAlreadyDecided, 409, 12009},
		{"FileTooLarge", fmt.Errorf("%w: scan.pdf", demande.ErrFileTooLarge), 413, 12013},
		{"NoFiles", demande.ErrNoFiles, 400, 12001},
		{"InvalidScope", demande.ErrInvalidScope, 400, 10001},
		{"Validation", apperrors.Invalid("titre", "Ce champ est obligatoire."), 400, 10001},
		{"Network", &apiclient.NetworkError{BaseURL: "http://localhost:8000"}, 502, 50200},
		{"BackendNotFound", &apiclient.APIError{Status: 404, Message: "Demande not found"}, 404, 20404},
		{"BackendUnauthorized", &apiclient.APIError{Status: 401, Message: "Could not validate credentials"}, 401, 10002},
		{"BackendDown", &apiclient.APIError{Status: 500, Message: "HTTP error 500"}, 502, 50200},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}, h.handleDemandeError)
}

func TestStaffHandler_ErrorMapping(t *testing.T) {
	h := NewStaffHandler(nil, zap.NewNop())
	runErrorCases(t, []errorCase{
		{"PhotoTooLarge", service.ErrPhotoTooLarge, 413, 13013},
		{"PhotoType", service.ErrPhotoType, 415, 13015},
		{"Duplicate", &apiclient.APIError{Status: 400, Message: "Cet email est déjà utilisé."}, 400, 20400},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}, h.handleStaffError)
}

func TestExportHandler_ErrorMapping(t *testing.T) {
	h := NewExportHandler(nil, zap.NewNop())
	runErrorCases(t, []errorCase{
		{"NoDemandes", service.ErrExportNoDemandes, 404, 16101},
		{"Forbidden", demande.ErrForbidden, 403, 12003},
		{"GenerateFail", fmt.Errorf("%w: disk", service.ErrExportGenerateFail), 500, 50000},
		{"Network", &apiclient.NetworkError{BaseURL: "http://localhost:8000"}, 502, 50200},
	}, h.handleExportError)
}

func TestHandleCommonError_Details(t *testing.T) {
	c, w := setupGin()
	if !handleCommonError(c, apperrors.Invalid("email", "Adresse email invalide.")) {
		t.Fatal("校验错误应被识别")
	}
	resp := parseResponse(w)
	if resp.Message != "Adresse email invalide." || resp.Details != "email" {
		t.Errorf("期望消息与字段名透传，实际 %+v", resp)
	}

	c, w = setupGin()
	handleCommonError(c, &apiclient.APIError{Status: 401, Message: "expired"})
	if resp := parseResponse(w); resp.Redirect != "/login" {
		t.Errorf("后端 401 应建议跳转 /login，实际 %q", resp.Redirect)
	}

	c, _ = setupGin()
	if handleCommonError(c, errors.New("other")) {
		t.Error("未知错误不应被识别")
	}
}

// ═══════════════════════════════════════════════════════════
// 上下文辅助
// ═══════════════════════════════════════════════════════════

func TestParseID(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		want   int64
	}{
		{"12", true, 12},
		{"0", false, 0},
		{"-3", false, 0},
		{"abc", false, 0},
	}
	for _, tt := range tests {
		c, w := setupGin()
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}
		id, ok := ParseID(c, "id")
		if ok != tt.wantOK || id != tt.want {
			t.Errorf("ParseID(%q) = %d,%v，期望 %d,%v", tt.raw, id, ok, tt.want, tt.wantOK)
		}
		if !ok && w.Code != http.StatusBadRequest {
			t.Errorf("ParseID(%q) 失败时期望 400，实际 %d", tt.raw, w.Code)
		}
	}
}

func TestMustGetSnapshot_NoSession(t *testing.T) {
	c, w := setupGin()
	if _, _, ok := MustGetSnapshot(c); ok {
		t.Fatal("无会话时不应成功")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Redirect != "/login" {
		t.Errorf("期望跳转 /login，实际 %q", resp.Redirect)
	}
}

func TestFormFiles_NotMultipart(t *testing.T) {
	c, _ := setupGin()
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"titre":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	files, closeAll, err := formFiles(c, "files")
	defer closeAll()
	if err != nil || len(files) != 0 {
		t.Errorf("非 multipart 请求应返回空列表，实际 %d 个文件, err=%v", len(files), err)
	}
	if isMultipart(c) {
		t.Error("JSON 请求不应被识别为 multipart")
	}
}
