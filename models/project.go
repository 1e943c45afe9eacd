package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Project struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	Name                  string          `gorm:"size:255;not null" json:"name" binding:"required"`
	ProjectType           ProjectType     `gorm:"size:16;not null" json:"project_type" binding:"required"`
	Company               Company         `gorm:"size:16;not null;index" json:"company" binding:"required"`
	MonthlyContractAmount decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"monthly_contract_amount"`
	ClientName            string          `gorm:"size:255" json:"client_name"`
	StartedOn             *time.Time      `json:"started_on"`
	EndedOn               *time.Time      `json:"ended_on"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`

	Members []*ProjectMember `gorm:"foreignKey:ProjectId" json:"members,omitempty"`
}

// ProjectMember is the staffing roster entry: who is assigned to a project
// and in what role. Actual effort comes from work allocations, not from here.
type ProjectMember struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ProjectId int       `gorm:"uniqueIndex:idx_project_member,priority:1;not null" json:"project_id" binding:"required"`
	MemberId  int       `gorm:"uniqueIndex:idx_project_member,priority:2;not null" json:"member_id" binding:"required"`
	Role      string    `gorm:"size:64" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProject struct {
	Name                  string          `json:"name" binding:"required"`
	ProjectType           ProjectType     `json:"project_type" binding:"required"`
	Company               Company         `json:"company" binding:"required"`
	MonthlyContractAmount decimal.Decimal `json:"monthly_contract_amount"`
	ClientName            string          `json:"client_name"`
	StartedOn             *time.Time      `json:"started_on"`
	EndedOn               *time.Time      `json:"ended_on"`
}

func (input *NewProject) validate() error {
	if !input.ProjectType.IsValid() {
		return errors.New("project type must be pass_through or direct")
	}
	if !input.Company.IsValid() {
		return errors.New("invalid company")
	}
	if input.MonthlyContractAmount.IsNegative() {
		return errors.New("monthly contract amount cannot be negative")
	}
	return nil
}

func CreateProject(ctx context.Context, input *NewProject) (*Project, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	project := Project{
		Name:                  input.Name,
		ProjectType:           input.ProjectType,
		Company:               input.Company,
		MonthlyContractAmount: input.MonthlyContractAmount,
		ClientName:            input.ClientName,
		StartedOn:             input.StartedOn,
		EndedOn:               input.EndedOn,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func UpdateProject(ctx context.Context, id int, input *NewProject) (*Project, error) {
	project, err := utils.FetchModel[Project](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	project.Name = input.Name
	project.ProjectType = input.ProjectType
	project.Company = input.Company
	project.MonthlyContractAmount = input.MonthlyContractAmount
	project.ClientName = input.ClientName
	project.StartedOn = input.StartedOn
	project.EndedOn = input.EndedOn

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func GetProject(ctx context.Context, id int) (*Project, error) {
	return utils.FetchModel[Project](ctx, id, "Members")
}

func ListProjects(ctx context.Context) ([]*Project, error) {
	return utils.FetchAllModels[Project](ctx)
}

func DeleteProject(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// GetProjectsById loads projects for the given ids, keyed by id.
// Soft-deleted and unknown projects are simply absent from the result;
// callers treat missing entries as skippable, not as errors.
func GetProjectsById(ctx context.Context, ids []int) (map[int]*Project, error) {
	db := config.GetDB()
	var projects []*Project
	if err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(ids)).Find(&projects).Error; err != nil {
		return nil, err
	}
	byId := make(map[int]*Project, len(projects))
	for _, p := range projects {
		byId[p.ID] = p
	}
	return byId, nil
}

type NewProjectMember struct {
	ProjectId int    `json:"project_id"`
	MemberId  int    `json:"member_id" binding:"required"`
	Role      string `json:"role"`
}

func AssignProjectMember(ctx context.Context, input *NewProjectMember) (*ProjectMember, error) {
	if err := utils.ValidateResourceId[Project](ctx, input.ProjectId); err != nil {
		return nil, errors.New("project not found")
	}
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return nil, errors.New("member not found")
	}

	assignment := ProjectMember{
		ProjectId: input.ProjectId,
		MemberId:  input.MemberId,
		Role:      input.Role,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func RemoveProjectMember(ctx context.Context, projectId int, memberId int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).
		Where("project_id = ? AND member_id = ?", projectId, memberId).
		Delete(&ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
