package account_test

import (
	"context"
	"primor/account"
	"primor/bizerror"
	"primor/persistence"
	"primor/testinfra"
	"testing"

	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	account.PasswordHashCost = bcrypt.MinCost
	db := testinfra.StartTestDatabase("primor")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&account.User{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func TestPasswordHash(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should verify hashed password", func(t *testing.T) {
		account.PasswordHashCost = bcrypt.MinCost
		hash, err := account.HashPassword("admin123")
		Expect(err).To(BeNil())
		Expect(hash).ToNot(Equal("admin123"))
		Expect(account.CheckPassword("admin123", hash)).To(BeTrue())
		Expect(account.CheckPassword("admin124", hash)).To(BeFalse())
	})
}

func TestBootstrapAdmin(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should create admin once", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		Expect(account.BootstrapAdmin(context.Background(), " Admin@Primor.com ", "Administrador", "admin123")).To(BeNil())
		Expect(account.BootstrapAdmin(context.Background(), "admin@primor.com", "Other", "changed")).To(BeNil())

		var users []account.User
		Expect(testDatabase.DS.GormDB(context.Background()).Find(&users).Error).To(BeNil())
		Expect(len(users)).To(Equal(1))
		Expect(users[0].Email).To(Equal("admin@primor.com"))
		Expect(users[0].Name).To(Equal("Administrador"))
		Expect(account.CheckPassword("admin123", users[0].PasswordHash)).To(BeTrue())
	})
}

func TestAuthenticate(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should authenticate by email and password", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		Expect(account.BootstrapAdmin(context.Background(), "admin@primor.com", "Administrador", "admin123")).To(BeNil())

		s := testinfra.BuildSession(1)
		u, err := account.Authenticate("ADMIN@primor.com", "admin123", s)
		Expect(err).To(BeNil())
		Expect(u.Name).To(Equal("Administrador"))

		u, err = account.Authenticate("admin@primor.com", "wrong", s)
		Expect(u).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))

		u, err = account.Authenticate("nobody@primor.com", "admin123", s)
		Expect(u).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})
}

func TestCreateAndQueryUsers(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("only admins can manage users", func(t *testing.T) {
		s := testinfra.BuildSession(1, "viewer")
		u, err := account.CreateUser(&account.UserCreation{Email: "a@b.com", Name: "a", Password: "123456"}, s)
		Expect(u).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))

		users, err := account.QueryUsers(s)
		Expect(users).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should create and list users", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(1)
		u1, err := account.CreateUser(&account.UserCreation{Email: "Zeca@primor.com", Name: "Zeca", Password: "123456"}, s)
		Expect(err).To(BeNil())
		Expect(u1.Email).To(Equal("zeca@primor.com"))
		u2, err := account.CreateUser(&account.UserCreation{Email: "ana@primor.com", Name: "Ana", Password: "123456"}, s)
		Expect(err).To(BeNil())

		_, err = account.CreateUser(&account.UserCreation{Email: "ana@primor.com", Name: "Ana 2", Password: "123456"}, s)
		Expect(err).ToNot(BeNil())

		users, err := account.QueryUsers(s)
		Expect(err).To(BeNil())
		Expect(users).To(Equal([]account.UserInfo{*u2, *u1}))
	})
}

func TestUpdatePassword(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should require the original password", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1)
		u, err := account.CreateUser(&account.UserCreation{Email: "ana@primor.com", Name: "Ana", Password: "123456"}, admin)
		Expect(err).To(BeNil())

		s := testinfra.BuildSession(u.ID)
		Expect(account.UpdatePassword(&account.PasswordUpdating{OriginalPassword: "bad", NewPassword: "654321"}, s)).
			To(Equal(bizerror.ErrInvalidPassword))
		Expect(account.UpdatePassword(&account.PasswordUpdating{OriginalPassword: "123456", NewPassword: "654321"}, s)).To(BeNil())

		_, err = account.Authenticate("ana@primor.com", "654321", s)
		Expect(err).To(BeNil())
	})
}
