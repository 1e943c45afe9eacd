package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"gorm.io/gorm"
)

type Member struct {
	ID        int            `gorm:"primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name" binding:"required"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required"`
	Phone     string         `gorm:"size:32" json:"phone"`
	Company   Company        `gorm:"size:16;not null;index" json:"company" binding:"required"`
	JoinedOn  *time.Time     `json:"joined_on"`
	LeftOn    *time.Time     `json:"left_on"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Compensation *CompensationTerm `gorm:"foreignKey:MemberId" json:"compensation,omitempty"`
	Skills       []*MemberSkill    `gorm:"foreignKey:MemberId" json:"skills,omitempty"`
}

type NewMember struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required"`
	Phone    string     `json:"phone"`
	Company  Company    `json:"company" binding:"required"`
	JoinedOn *time.Time `json:"joined_on"`
}

func (input *NewMember) validate(ctx context.Context, exceptId int) error {
	if !input.Company.IsValid() {
		return errors.New("invalid company")
	}
	if !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if strings.TrimSpace(input.Phone) != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if err := utils.ValidateUnique[Member](ctx, "email", input.Email, exceptId); err != nil {
		return err
	}
	return nil
}

func CreateMember(ctx context.Context, input *NewMember) (*Member, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	member := Member{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		JoinedOn: input.JoinedOn,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func UpdateMember(ctx context.Context, id int, input *NewMember) (*Member, error) {
	member, err := utils.FetchModel[Member](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	member.Name = input.Name
	member.Email = input.Email
	member.Phone = input.Phone
	member.Company = input.Company
	member.JoinedOn = input.JoinedOn

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func GetMember(ctx context.Context, id int) (*Member, error) {
	return utils.FetchModel[Member](ctx, id, "Compensation", "Skills")
}

func ListMembers(ctx context.Context) ([]*Member, error) {
	return utils.FetchAllModels[Member](ctx, "Compensation")
}

func DeleteMember(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
