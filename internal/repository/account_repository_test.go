package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/userhub/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var accountTestDBSeq int

func setupAccountRepoTest(t *testing.T) (*gorm.DB, *GormAccountRepository) {
	t.Helper()
	accountTestDBSeq++
	dsn := fmt.Sprintf("file:account_repo_test_%d?mode=memory&cache=shared", accountTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db, NewAccountRepository(db)
}

func mustCreateAccount(t *testing.T, repo *GormAccountRepository, email, status string, token *string) *models.Account {
	t.Helper()
	account := &models.Account{
		DisplayName:       "测试用户",
		Email:             email,
		PasswordHash:      "$2a$10$fakefakefakefakefakefake",
		Status:            status,
		VerificationToken: token,
	}
	if err := repo.Create(account); err != nil {
		t.Fatalf("创建账号失败: %v", err)
	}
	return account
}

func strPtr(s string) *string { return &s }

func TestCreateDuplicateEmail(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	mustCreateAccount(t, repo, "dup@example.com", "unverified", strPtr("tok-1"))

	err := repo.Create(&models.Account{
		DisplayName:  "另一个",
		Email:        "dup@example.com",
		PasswordHash: "$2a$10$other",
		Status:       "unverified",
	})
	if err != ErrDuplicateEmail {
		t.Fatalf("期望 ErrDuplicateEmail，实际: %v", err)
	}
}

func TestGetByEmailNotFound(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	account, err := repo.GetByEmail("missing@example.com")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if account != nil {
		t.Fatalf("期望 nil，实际: %+v", account)
	}
}

func TestGetByVerificationToken(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	created := mustCreateAccount(t, repo, "a@example.com", "unverified", strPtr("tok-abc"))

	got, err := repo.GetByVerificationToken("tok-abc")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("期望命中账号 %d，实际: %+v", created.ID, got)
	}

	// 空 token 不应命中任何行
	got, err = repo.GetByVerificationToken("")
	if err != nil || got != nil {
		t.Fatalf("空 token 期望 (nil, nil)，实际: %+v, %v", got, err)
	}

	got, err = repo.GetByVerificationToken("no-such-token")
	if err != nil || got != nil {
		t.Fatalf("未知 token 期望 (nil, nil)，实际: %+v, %v", got, err)
	}
}

func TestMarkVerifiedOnlyUnverified(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	unverified := mustCreateAccount(t, repo, "u@example.com", "unverified", strPtr("tok-u"))
	blocked := mustCreateAccount(t, repo, "b@example.com", "blocked", strPtr("tok-b"))

	ok, err := repo.MarkVerified(unverified.ID)
	if err != nil {
		t.Fatalf("MarkVerified 失败: %v", err)
	}
	if !ok {
		t.Fatalf("unverified 账号应被激活")
	}
	got, _ := repo.GetByID(unverified.ID)
	if got.Status != "active" {
		t.Fatalf("状态应为 active，实际: %s", got.Status)
	}
	if got.VerificationToken != nil {
		t.Fatalf("验证 token 应被清空，实际: %v", *got.VerificationToken)
	}

	// blocked 账号不应被条件更新命中，token 保留
	ok, err = repo.MarkVerified(blocked.ID)
	if err != nil {
		t.Fatalf("MarkVerified 失败: %v", err)
	}
	if ok {
		t.Fatalf("blocked 账号不应被激活")
	}
	got, _ = repo.GetByID(blocked.ID)
	if got.Status != "blocked" {
		t.Fatalf("blocked 状态不应改变，实际: %s", got.Status)
	}
	if got.VerificationToken == nil || *got.VerificationToken != "tok-b" {
		t.Fatalf("blocked 账号 token 应保留，实际: %v", got.VerificationToken)
	}

	// 重复验证同一账号应返回 false（幂等）
	ok, err = repo.MarkVerified(unverified.ID)
	if err != nil || ok {
		t.Fatalf("重复验证期望 (false, nil)，实际: %v, %v", ok, err)
	}
}

func TestBatchUpdateStatusSkipsMissing(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	a := mustCreateAccount(t, repo, "a@example.com", "active", nil)
	b := mustCreateAccount(t, repo, "b@example.com", "unverified", strPtr("tok"))

	affected, err := repo.BatchUpdateStatus([]uint{a.ID, b.ID, 9999}, "blocked")
	if err != nil {
		t.Fatalf("批量更新失败: %v", err)
	}
	if affected != 2 {
		t.Fatalf("期望影响 2 行，实际: %d", affected)
	}
	for _, id := range []uint{a.ID, b.ID} {
		got, _ := repo.GetByID(id)
		if got.Status != "blocked" {
			t.Fatalf("账号 %d 状态应为 blocked，实际: %s", id, got.Status)
		}
	}

	affected, err = repo.BatchUpdateStatus(nil, "active")
	if err != nil || affected != 0 {
		t.Fatalf("空 ID 列表期望 (0, nil)，实际: %d, %v", affected, err)
	}
}

func TestDeleteByIDsSkipsMissing(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	a := mustCreateAccount(t, repo, "a@example.com", "active", nil)
	mustCreateAccount(t, repo, "keep@example.com", "active", nil)

	deleted, err := repo.DeleteByIDs([]uint{a.ID, 8888})
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("期望删除 1 行，实际: %d", deleted)
	}
	got, _ := repo.GetByID(a.ID)
	if got != nil {
		t.Fatalf("账号应已物理删除")
	}
	kept, _ := repo.GetByEmail("keep@example.com")
	if kept == nil {
		t.Fatalf("未指定的账号不应被删除")
	}
}

func TestDeleteByStatusOnlyUnverified(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	mustCreateAccount(t, repo, "u1@example.com", "unverified", strPtr("t1"))
	mustCreateAccount(t, repo, "u2@example.com", "unverified", strPtr("t2"))
	active := mustCreateAccount(t, repo, "a@example.com", "active", nil)
	blocked := mustCreateAccount(t, repo, "b@example.com", "blocked", nil)

	deleted, err := repo.DeleteByStatus("unverified")
	if err != nil {
		t.Fatalf("按状态删除失败: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("期望删除 2 行，实际: %d", deleted)
	}
	for _, id := range []uint{active.ID, blocked.ID} {
		got, _ := repo.GetByID(id)
		if got == nil {
			t.Fatalf("账号 %d 不应被删除", id)
		}
	}
}

func TestListByLastLoginDescNullsLast(t *testing.T) {
	_, repo := setupAccountRepoTest(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	never := mustCreateAccount(t, repo, "never@example.com", "unverified", strPtr("t"))
	oldest := mustCreateAccount(t, repo, "old@example.com", "active", nil)
	newest := mustCreateAccount(t, repo, "new@example.com", "active", nil)
	if err := repo.UpdateLastLogin(oldest.ID, old); err != nil {
		t.Fatalf("更新登录时间失败: %v", err)
	}
	if err := repo.UpdateLastLogin(newest.ID, recent); err != nil {
		t.Fatalf("更新登录时间失败: %v", err)
	}

	list, err := repo.ListByLastLoginDesc()
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 个账号，实际: %d", len(list))
	}
	wantOrder := []uint{newest.ID, oldest.ID, never.ID}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Fatalf("位置 %d 期望账号 %d，实际: %d", i, want, list[i].ID)
		}
	}
}
