package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Skill struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name" binding:"required"`
	Category  string    `gorm:"size:64" json:"category"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MemberSkill rates a member on a skill from 1 (novice) to 5 (expert).
type MemberSkill struct {
	ID        int       `gorm:"primary_key" json:"id"`
	MemberId  int       `gorm:"uniqueIndex:idx_member_skill,priority:1;not null" json:"member_id"`
	SkillId   int       `gorm:"uniqueIndex:idx_member_skill,priority:2;not null" json:"skill_id"`
	Level     int       `gorm:"not null" json:"level"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Skill *Skill `gorm:"foreignKey:SkillId" json:"skill,omitempty"`
}

type NewSkill struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

func CreateSkill(ctx context.Context, input *NewSkill) (*Skill, error) {
	if err := utils.ValidateUnique[Skill](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}
	skill := Skill{Name: input.Name, Category: input.Category}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func ListSkills(ctx context.Context) ([]*Skill, error) {
	return utils.FetchAllModels[Skill](ctx)
}

func DeleteSkill(ctx context.Context, id int) error {
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("skill_id = ?", id).Delete(&MemberSkill{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Skill{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.ErrorRecordNotFound
		}
		return nil
	})
	return err
}

type NewMemberSkill struct {
	MemberId int `json:"member_id"`
	SkillId  int `json:"skill_id" binding:"required"`
	Level    int `json:"level" binding:"required"`
}

// RateMemberSkill sets or replaces the member's level for one skill.
func RateMemberSkill(ctx context.Context, input *NewMemberSkill) (*MemberSkill, error) {
	if input.Level < 1 || input.Level > 5 {
		return nil, errors.New("level must be between 1 and 5")
	}
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return nil, errors.New("member not found")
	}
	if err := utils.ValidateResourceId[Skill](ctx, input.SkillId); err != nil {
		return nil, errors.New("skill not found")
	}

	rating := MemberSkill{
		MemberId: input.MemberId,
		SkillId:  input.SkillId,
		Level:    input.Level,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}, {Name: "skill_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		return nil, err
	}

	var saved MemberSkill
	if err := db.WithContext(ctx).Preload("Skill").
		Where("member_id = ? AND skill_id = ?", input.MemberId, input.SkillId).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func ListMemberSkills(ctx context.Context, memberId int) ([]*MemberSkill, error) {
	db := config.GetDB()
	var ratings []*MemberSkill
	err := db.WithContext(ctx).Preload("Skill").
		Where("member_id = ?", memberId).
		Order("skill_id").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func RemoveMemberSkill(ctx context.Context, memberId int, skillId int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).
		Where("member_id = ? AND skill_id = ?", memberId, skillId).
		Delete(&MemberSkill{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
