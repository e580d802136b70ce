package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// lastLoginDescNullsLastExpr 构建「最后登录时间降序、空值排最后」的排序表达式，
// 兼容 sqlite 与 postgres。
func lastLoginDescNullsLastExpr(db *gorm.DB) string {
	return lastLoginDescNullsLastExprByDialect(dbDialectName(db))
}

func lastLoginDescNullsLastExprByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "last_login_at DESC NULLS LAST"
	default:
		// sqlite 旧版本不支持 NULLS LAST，用 IS NULL 先行分组等价实现
		return "last_login_at IS NULL, last_login_at DESC"
	}
}
