package model

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User 用户结构体 (用于登录认证)
type User struct {
	gorm.Model
	Username string         `json:"username" gorm:"uniqueIndex;not null"` // 用户名唯一且不为空
	Password string         `json:"-" gorm:"not null"`                    // 加密后的密码
	Email    string         `json:"email"`
	Roles    pq.StringArray `json:"roles" gorm:"type:text[]"`
}

// RoleQuery 允许调用 SPARQL 代理接口
const RoleQuery = "query"

// HasRole 判断用户是否拥有指定角色
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
