package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/utils"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleKvkHead UserRole = "kvk_head"
	UserRoleUser    UserRole = "user"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleKvkHead || r == UserRoleUser
}

type User struct {
	ID        int        `gorm:"primary_key" json:"id"`
	Username  string     `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email     string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;not null;default:user" json:"role"`
	KvkName   string     `gorm:"size:100" json:"kvkName"`
	IsActive  *bool      `gorm:"not null;default:true" json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// UserSummary is the public projection embedded in report responses.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	KvkName  string `json:"kvkName"`
	Role     string `json:"role,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, KvkName: u.KvkName, Role: string(u.Role)}
}

func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

type NewUser struct {
	Username string   `json:"username" validate:"required,min=3,max=30,username"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6,strongpassword"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=admin kvk_head user"`
	KvkName  string   `json:"kvkName" validate:"omitempty,max=100"`
}

type UpdateProfile struct {
	Email   *string `json:"email" validate:"omitempty,email"`
	KvkName *string `json:"kvkName" validate:"omitempty,max=100"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,strongpassword"`
}

type LoginInfo struct {
	Token string       `json:"token"`
	User  *UserSummary `json:"user"`
}

/*
caches:
	User:$id
*/

func userCacheKey(id int) string {
	return fmt.Sprintf("User:%d", id)
}

func (u User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey(userCacheKey(u.ID))
}

func Register(ctx context.Context, input *NewUser) (*LoginInfo, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.KvkName = strings.TrimSpace(input.KvkName)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = UserRoleUser
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewConflict("Username already exists", nil)
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewConflict("Email already exists", nil)
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     input.Role,
		KvkName:  input.KvkName,
		IsActive: utils.NewTrue(),
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return utils.NewConflict("Username or email already exists", err)
			}
			return err
		}
		return writeAudit(tx, auditEntry{
			Action:       AuditActionCreate,
			ResourceType: AuditResourceUser,
			ResourceId:   &user.ID,
			UserId:       &user.ID,
			UserEmail:    user.Email,
			Metadata:     map[string]any{"action": "user_registration"},
		})
	})
	if err != nil {
		return nil, err
	}
	bumpReportGeneration(ctx)

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginInfo{Token: token, User: user.Summary()}, nil
}

// Login accepts a username or an email as identifier.
func Login(ctx context.Context, identifier string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	identifier = strings.TrimSpace(identifier)

	var user User
	err := db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewUnauthenticated("Invalid credentials", utils.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.Active() {
		return nil, utils.NewUnauthenticated("Invalid credentials", utils.ErrUserInactive)
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, utils.NewUnauthenticated("Invalid credentials", utils.ErrInvalidCredentials)
	}

	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now
	_ = user.RemoveInstanceRedis()

	RecordAudit(ctx, auditEntry{
		Action:       AuditActionLogin,
		ResourceType: AuditResourceUser,
		ResourceId:   &user.ID,
		UserId:       &user.ID,
		UserEmail:    user.Email,
	})

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginInfo{Token: token, User: user.Summary()}, nil
}

func Logout(ctx context.Context, actor ReportActor) {
	RecordAudit(ctx, auditEntry{
		Action:       AuditActionLogout,
		ResourceType: AuditResourceUser,
		ResourceId:   &actor.UserID,
		UserId:       &actor.UserID,
		UserEmail:    actor.Email,
	})
}

// RefreshToken mints a new token for an already resolved user.
func RefreshToken(ctx context.Context, userId int) (*LoginInfo, error) {
	user, err := GetActiveUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginInfo{Token: token, User: user.Summary()}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var result User
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetActiveUser resolves a token subject, preferring the Redis copy.
func GetActiveUser(ctx context.Context, id int) (*User, error) {
	var user User
	exists, err := config.GetRedisObject(userCacheKey(id), &user)
	if err != nil {
		config.LogErrorCtx(ctx, "models", "GetActiveUser", "redis get", id, err)
		exists = false
	}
	if !exists {
		found, err := GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return nil, utils.ErrUserInactive
			}
			return nil, err
		}
		user = *found
		if err := config.SetRedisObject(userCacheKey(id), &user, 10*time.Minute); err != nil {
			config.LogErrorCtx(ctx, "models", "GetActiveUser", "redis set", id, err)
		}
	}
	if !user.Active() {
		return nil, utils.ErrUserInactive
	}
	return &user, nil
}

func UpdateUserProfile(ctx context.Context, userId int, input *UpdateProfile) (*User, error) {
	if input.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &e
	}
	if input.KvkName != nil {
		k := strings.TrimSpace(*input.KvkName)
		input.KvkName = &k
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	db := config.GetDB()
	user, err := GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	before := map[string]any{"email": user.Email, "kvkName": user.KvkName}

	updates := map[string]any{}
	if input.Email != nil && *input.Email != user.Email {
		var count int64
		if err := db.WithContext(ctx).Model(&User{}).Where("email = ? AND id <> ?", *input.Email, userId).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewConflict("Email already in use", nil)
		}
		updates["email"] = *input.Email
		user.Email = *input.Email
	}
	if input.KvkName != nil {
		updates["kvk_name"] = *input.KvkName
		user.KvkName = *input.KvkName
	}
	if len(updates) == 0 {
		return user, nil
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userId).Updates(updates).Error; err != nil {
			return err
		}
		return writeAudit(tx, auditEntry{
			Action:       AuditActionUpdate,
			ResourceType: AuditResourceUser,
			ResourceId:   &user.ID,
			UserId:       &user.ID,
			UserEmail:    user.Email,
			Changes:      map[string]any{"from": before, "to": map[string]any{"email": user.Email, "kvkName": user.KvkName}},
		})
	})
	if err != nil {
		return nil, err
	}
	_ = user.RemoveInstanceRedis()
	bumpReportGeneration(ctx)
	return user, nil
}

func ChangePassword(ctx context.Context, userId int, input *ChangePasswordInput) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	user, err := GetUser(ctx, userId)
	if err != nil {
		return err
	}
	if err := utils.ComparePassword(user.Password, input.CurrentPassword); err != nil {
		return utils.NewUnauthenticated("Current password is incorrect", utils.ErrInvalidCredentials)
	}
	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userId).UpdateColumn("password", string(hashedPassword)).Error; err != nil {
			return err
		}
		return writeAudit(tx, auditEntry{
			Action:       AuditActionUpdate,
			ResourceType: AuditResourceUser,
			ResourceId:   &user.ID,
			UserId:       &user.ID,
			UserEmail:    user.Email,
			Metadata:     map[string]any{"action": "password_change"},
		})
	})
	if err != nil {
		return err
	}
	return user.RemoveInstanceRedis()
}

type UserFilter struct {
	Page   int
	Limit  int
	Search string
	Role   UserRole
}

type UserList struct {
	Users      []*User    `json:"users"`
	Pagination Pagination `json:"pagination"`
}

func ListUsers(ctx context.Context, filter UserFilter) (*UserList, error) {
	db := config.GetDB()
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := db.WithContext(ctx).Model(&User{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(kvk_name) LIKE ?", like, like, like)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var users []*User
	if err := q.Order("created_at DESC").Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return &UserList{Users: users, Pagination: newPagination(page, limit, total)}, nil
}

// SetUserStatus activates or deactivates an account; deactivation revokes outstanding tokens
// because every request re-checks isActive.
func SetUserStatus(ctx context.Context, actor ReportActor, userId int, isActive bool) (*User, error) {
	db := config.GetDB()
	user, err := GetUser(ctx, userId)
	if err != nil {
		return nil, utils.NewNotFound("User not found")
	}
	previous := user.Active()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userId).UpdateColumn("is_active", isActive).Error; err != nil {
			return err
		}
		return writeAudit(tx, auditEntry{
			Action:       AuditActionUpdate,
			ResourceType: AuditResourceUser,
			ResourceId:   &user.ID,
			UserId:       &actor.UserID,
			UserEmail:    actor.Email,
			Changes:      map[string]any{"from": map[string]any{"isActive": previous}, "to": map[string]any{"isActive": isActive}},
			Metadata:     map[string]any{"action": "user_status_change", "targetUser": user.Username},
		})
	})
	if err != nil {
		return nil, err
	}
	user.IsActive = &isActive
	if err := user.RemoveInstanceRedis(); err != nil {
		config.LogError(config.GetLogger(), "models", "SetUserStatus", "redis del", userId, err)
	}
	bumpReportGeneration(ctx)
	return user, nil
}

// CreateAdmin seeds an administrator, or promotes and re-activates an existing account.
func CreateAdmin(ctx context.Context, username, email, password string) (*User, bool, error) {
	db := config.GetDB()
	email = strings.ToLower(strings.TrimSpace(email))

	var existing User
	err := db.WithContext(ctx).Where("username = ? OR email = ?", username, email).Take(&existing).Error
	if err == nil {
		if err := db.WithContext(ctx).Model(&existing).Updates(map[string]any{"role": UserRoleAdmin, "is_active": true}).Error; err != nil {
			return nil, false, err
		}
		_ = existing.RemoveInstanceRedis()
		bumpReportGeneration(ctx)
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	user := User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     UserRoleAdmin,
		KvkName:  "System Administration",
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, false, err
	}
	bumpReportGeneration(ctx)
	return &user, true, nil
}
