package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fitmarket-next/internal/config"
	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"
	"github.com/fitmarket-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) *UserAuthService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "user-auth-test-secret-key-0123456789"
	cfg.UserJWT.ExpireHours = 24
	cfg.UserJWT.RememberMeExpireHours = 168
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	user, token, _, err := svc.Register(" Trainer@Example.com ", "Abcdef12", "", constants.UserRoleTrainer)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "trainer@example.com" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.DisplayName != "trainer" {
		t.Fatalf("nickname should fall back to email local part, got %s", user.DisplayName)
	}
	if token == "" {
		t.Fatalf("register should issue a token")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.UserRoleTrainer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	logged, _, _, err := svc.Login("trainer@example.com", "Abcdef12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.LastLoginAt == nil {
		t.Fatalf("last login time should be recorded")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register("not-an-email", "Abcdef12", "", constants.UserRoleClient); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail got %v", err)
	}
	if _, _, _, err := svc.Register("a@b.com", "Abcdef12", "", "manager"); !errors.Is(err, ErrUserRoleInvalid) {
		t.Fatalf("want ErrUserRoleInvalid got %v", err)
	}
	if _, _, _, err := svc.Register("a@b.com", "short", "", constants.UserRoleClient); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}

	if _, _, _, err := svc.Register("dup@example.com", "Abcdef12", "", constants.UserRoleClient); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, _, err := svc.Register("DUP@example.com", "Abcdef12", "", constants.UserRoleClient); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("want ErrEmailExists got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := setupUserAuthServiceTest(t)
	user, _, _, err := svc.Register("client@example.com", "Abcdef12", "小李", constants.UserRoleClient)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := svc.Login("client@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "Abcdef12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("missing user want ErrInvalidCredentials got %v", err)
	}

	user.Status = constants.UserStatusDisabled
	if err := svc.userRepo.Update(user); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("client@example.com", "Abcdef12"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("want ErrUserDisabled got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := setupUserAuthServiceTest(t)
	user, _, _, err := svc.Register("pw@example.com", "Abcdef12", "", constants.UserRoleTrainer)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-old", "Newpass12"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Abcdef12", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Abcdef12", "Newpass12"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, _, err := svc.Login("pw@example.com", "Newpass12"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := setupUserAuthServiceTest(t)
	user, _, _, err := svc.Register("profile@example.com", "Abcdef12", "", constants.UserRoleClient)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.UpdateProfile(user.ID, nil, nil); !errors.Is(err, ErrProfileEmpty) {
		t.Fatalf("want ErrProfileEmpty got %v", err)
	}

	nickname := "新昵称"
	locale := "en-US"
	updated, err := svc.UpdateProfile(user.ID, &nickname, &locale)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != nickname || updated.Locale != locale {
		t.Fatalf("profile not updated: %+v", updated)
	}
}

func TestValidatePasswordPolicyKeys(t *testing.T) {
	policy := config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireNumber: true,
	}

	err := validatePassword(policy, "abc")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	var keyed interface {
		Key() string
		Args() []interface{}
	}
	if !errors.As(err, &keyed) {
		t.Fatalf("policy error should expose key and args")
	}
	if keyed.Key() != "error.password_min_length" {
		t.Fatalf("key want error.password_min_length got %s", keyed.Key())
	}
	if len(keyed.Args()) != 1 || keyed.Args()[0] != 8 {
		t.Fatalf("args want [8] got %v", keyed.Args())
	}

	if err := validatePassword(policy, "abcdefgh"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("missing upper want ErrWeakPassword got %v", err)
	}
	if err := validatePassword(policy, "Abcdefg1"); err != nil {
		t.Fatalf("valid password should pass, got %v", err)
	}
}
