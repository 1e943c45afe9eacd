package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"gorm.io/gorm"
)

// User is a console login. Members and users are separate; a user may be
// linked to a member row for self-service allocation submission.
type User struct {
	ID        int            `gorm:"primary_key" json:"id"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      UserRole       `gorm:"size:16;not null;default:'member'" json:"role"`
	MemberId  *int           `gorm:"index" json:"member_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type NewUser struct {
	Email    string   `json:"email" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role"`
	MemberId *int     `json:"member_id"`
}

func (input *NewUser) validate(ctx context.Context, exceptId int) error {
	if !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if len(input.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if input.Role == "" {
		input.Role = UserRoleMember
	}
	if !input.Role.IsValid() {
		return errors.New("invalid role")
	}
	if input.MemberId != nil {
		if err := utils.ValidateResourceId[Member](ctx, *input.MemberId); err != nil {
			return errors.New("member not found")
		}
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, exceptId); err != nil {
		return err
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Email:    input.Email,
		Password: string(hashed),
		Role:     input.Role,
		MemberId: input.MemberId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUserByEmail creates the user or resets its password and role. Used
// by the admin seeding command.
func UpsertUserByEmail(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()
	var existing User
	err := db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CreateUser(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	existing.Password = string(hashed)
	if input.Role != "" {
		existing.Role = input.Role
	}
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Authenticate checks the email/password pair and returns the user.
func Authenticate(ctx context.Context, email string, password string) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, errors.New("invalid email or password")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid email or password")
	}
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func ListUsers(ctx context.Context) ([]*User, error) {
	return utils.FetchAllModels[User](ctx)
}

func DeleteUser(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
