package account

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID           types.ID  `json:"id"`
	Email        string    `json:"email" gorm:"unique_index:uni_user_email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreateTime   time.Time `json:"createTime"`
}

type UserInfo struct {
	ID    types.ID `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
}

type UserCreation struct {
	Email    string `json:"email" binding:"required,email,lte=120"`
	Name     string `json:"name" binding:"required,lte=100"`
	Password string `json:"password" binding:"required,gte=6,lte=64"`
}

type PasswordUpdating struct {
	OriginalPassword string `json:"originalPassword" binding:"required"`
	NewPassword      string `json:"newPassword" binding:"required,gte=6,lte=64"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.Name}
}
