package account

import (
	"context"
	"errors"
	"primor/authority"
	"primor/bizerror"
	"primor/idgen"
	"primor/persistence"
	"primor/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	userIdWorker = idgen.NewWorker()

	PasswordHashCost = bcrypt.DefaultCost

	AuthenticateFunc   = Authenticate
	LoadPermFunc       = LoadPerms
	CreateUserFunc     = CreateUser
	QueryUsersFunc     = QueryUsers
	UpdatePasswordFunc = UpdatePassword
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(bytes), err
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// LoadPerms grants every staff account full access, the service has a single role.
func LoadPerms(uid types.ID) authority.Permissions {
	return authority.Permissions{authority.SystemAdmin}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BootstrapAdmin creates the administrator account on first start.
func BootstrapAdmin(ctx context.Context, email, name, password string) error {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	email = normalizeEmail(email)

	var count int
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u := User{ID: idgen.NextID(userIdWorker), Email: email, Name: name, PasswordHash: hash, CreateTime: time.Now()}
	if err := db.Create(&u).Error; err != nil {
		return err
	}
	logrus.WithField("email", email).Info("administrator account created")
	return nil
}

func Authenticate(email, password string, s *session.Session) (*User, error) {
	u := User{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	if err := db.Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	if !CheckPassword(password, u.PasswordHash) {
		return nil, bizerror.ErrUnauthenticated
	}
	return &u, nil
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	hash, err := HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	u := User{ID: idgen.NextID(userIdWorker), Email: normalizeEmail(c.Email), Name: c.Name, PasswordHash: hash, CreateTime: time.Now()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Create(&u).Error; err != nil {
		return nil, err
	}
	info := u.Info()
	return &info, nil
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	var users []User
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.Info())
	}
	return infos, nil
}

func UpdatePassword(u *PasswordUpdating, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where("id = ?", s.Identity.ID).First(&user).Error; err != nil {
			return err
		}
		if !CheckPassword(u.OriginalPassword, user.PasswordHash) {
			return bizerror.ErrInvalidPassword
		}
		hash, err := HashPassword(u.NewPassword)
		if err != nil {
			return err
		}
		return tx.Model(&User{}).Where("id = ?", user.ID).Update("password_hash", hash).Error
	})
}
