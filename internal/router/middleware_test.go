package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/userhub/internal/config"
	"github.com/userhub/internal/constants"
	"github.com/userhub/internal/models"
	"github.com/userhub/internal/repository"
	"github.com/userhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const testJWTSecret = "middleware-test-secret"

var middlewareTestSeq int

func setupGateTest(t *testing.T) (*gin.Engine, *service.AccountService, repository.AccountRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	middlewareTestSeq++
	dsn := fmt.Sprintf("file:middleware_test_%d?mode=memory&cache=shared", middlewareTestSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	repo := repository.NewAccountRepository(db)
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: testJWTSecret, ExpireHours: 24}}
	svc := service.NewAccountService(cfg, repo, nil, nil)

	r := gin.New()
	protected := r.Group("/protected")
	protected.Use(AuthMiddleware(testJWTSecret, repo))
	protected.GET("", func(c *gin.Context) {
		id, _ := c.Get("account_id")
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "account_id": id})
	})
	return r, svc, repo
}

type gateResponse struct {
	StatusCode int                    `json:"status_code"`
	Msg        string                 `json:"msg"`
	Data       map[string]interface{} `json:"data"`
}

func doGateRequest(t *testing.T, r *gin.Engine, authHeader string) gateResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp gateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v (body: %s)", err, w.Body.String())
	}
	return resp
}

func registerAndLogin(t *testing.T, svc *service.AccountService, email string) (*models.Account, string) {
	t.Helper()
	account, err := svc.Register("Gate User", email, "pass123")
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	_, token, _, err := svc.Login(email, "pass123")
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	return account, token
}

func TestGateMissingHeader(t *testing.T) {
	r, _, _ := setupGateTest(t)

	resp := doGateRequest(t, r, "")
	if resp.StatusCode != 401 {
		t.Fatalf("缺少凭证期望 401，实际: %d", resp.StatusCode)
	}
	if resp.Data != nil {
		if redirect, ok := resp.Data["redirect"]; ok && redirect == true {
			t.Fatalf("缺少凭证不应提示 redirect")
		}
	}
}

func TestGateMalformedHeader(t *testing.T) {
	r, _, _ := setupGateTest(t)

	for _, header := range []string{"Token abc", "Bearer", "abc"} {
		resp := doGateRequest(t, r, header)
		if resp.StatusCode != 401 {
			t.Fatalf("非法凭证头 %q 期望 401，实际: %d", header, resp.StatusCode)
		}
	}
}

func TestGateInvalidTokenRedirect(t *testing.T) {
	r, _, _ := setupGateTest(t)

	resp := doGateRequest(t, r, "Bearer not-a-jwt")
	if resp.StatusCode != 401 {
		t.Fatalf("非法 token 期望 401，实际: %d", resp.StatusCode)
	}
	if resp.Data == nil || resp.Data["redirect"] != true {
		t.Fatalf("非法 token 应提示 redirect，实际 data: %v", resp.Data)
	}
}

func TestGateValidToken(t *testing.T) {
	r, svc, _ := setupGateTest(t)
	_, token := registerAndLogin(t, svc, "gate@example.com")

	resp := doGateRequest(t, r, "Bearer "+token)
	if resp.StatusCode != 0 {
		t.Fatalf("合法会话期望放行，实际: %d (%s)", resp.StatusCode, resp.Msg)
	}
}

func TestGateDeletedAccountRejected(t *testing.T) {
	r, svc, repo := setupGateTest(t)
	account, token := registerAndLogin(t, svc, "gone@example.com")

	// token 依然有效，但账号已被删除
	if _, err := repo.DeleteByIDs([]uint{account.ID}); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	resp := doGateRequest(t, r, "Bearer "+token)
	if resp.StatusCode != 403 {
		t.Fatalf("已删除账号期望 403，实际: %d", resp.StatusCode)
	}
	if resp.Data == nil || resp.Data["redirect"] != true {
		t.Fatalf("已删除账号应提示 redirect，实际 data: %v", resp.Data)
	}
}

func TestGateBlockedAccountRejectedNextRequest(t *testing.T) {
	r, svc, repo := setupGateTest(t)
	account, token := registerAndLogin(t, svc, "blocked@example.com")

	// 封禁前 token 可用
	resp := doGateRequest(t, r, "Bearer "+token)
	if resp.StatusCode != 0 {
		t.Fatalf("封禁前应放行，实际: %d", resp.StatusCode)
	}

	// 封禁后下一个请求立即被拒（回源读取，不走缓存）
	if _, err := repo.BatchUpdateStatus([]uint{account.ID}, constants.AccountStatusBlocked); err != nil {
		t.Fatalf("封禁失败: %v", err)
	}
	resp = doGateRequest(t, r, "Bearer "+token)
	if resp.StatusCode != 403 {
		t.Fatalf("封禁后期望 403，实际: %d", resp.StatusCode)
	}
	if resp.Data == nil || resp.Data["redirect"] != true {
		t.Fatalf("封禁拒绝应提示 redirect，实际 data: %v", resp.Data)
	}

	// 解封后恢复访问
	if _, err := repo.BatchUpdateStatus([]uint{account.ID}, constants.AccountStatusActive); err != nil {
		t.Fatalf("解封失败: %v", err)
	}
	resp = doGateRequest(t, r, "Bearer "+token)
	if resp.StatusCode != 0 {
		t.Fatalf("解封后应放行，实际: %d", resp.StatusCode)
	}
}

func TestGateUnverifiedAccountAllowed(t *testing.T) {
	r, svc, _ := setupGateTest(t)
	_, token := registerAndLogin(t, svc, "unverified@example.com")

	// unverified 不等于 blocked，允许访问受保护接口
	resp := doGateRequest(t, r, "Bearer "+token)
	if resp.StatusCode != 0 {
		t.Fatalf("unverified 账号应放行，实际: %d", resp.StatusCode)
	}
}

func TestGateExpiredTokenRedirect(t *testing.T) {
	r, svc, _ := setupGateTest(t)
	account, _ := registerAndLogin(t, svc, "expired@example.com")

	expired := signExpiredToken(t, account.ID, account.Email)
	resp := doGateRequest(t, r, "Bearer "+expired)
	if resp.StatusCode != 401 {
		t.Fatalf("过期 token 期望 401，实际: %d", resp.StatusCode)
	}
	if resp.Data == nil || resp.Data["redirect"] != true {
		t.Fatalf("过期 token 应提示 redirect，实际 data: %v", resp.Data)
	}
}

func signExpiredToken(t *testing.T, accountID uint, email string) string {
	t.Helper()
	claims := service.AccountJWTClaims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("构造过期 token 失败: %v", err)
	}
	return signed
}
