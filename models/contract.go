package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"gorm.io/gorm"
)

// Contract tracks an agreement sent out for signature. The envelope id ties
// the row to the external signing service; the signing flow itself happens
// there, we only record status transitions.
type Contract struct {
	ID           int            `gorm:"primary_key" json:"id"`
	Title        string         `gorm:"size:255;not null" json:"title" binding:"required"`
	Counterparty string         `gorm:"size:255;not null" json:"counterparty" binding:"required"`
	Company      Company        `gorm:"size:16;not null;index" json:"company" binding:"required"`
	ProjectId    *int           `gorm:"index" json:"project_id"`
	Status       ContractStatus `gorm:"size:16;not null;default:'draft';index" json:"status"`
	EnvelopeId   string         `gorm:"size:128" json:"envelope_id"`
	SignedAt     *time.Time     `json:"signed_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type NewContract struct {
	Title        string  `json:"title" binding:"required"`
	Counterparty string  `json:"counterparty" binding:"required"`
	Company      Company `json:"company" binding:"required"`
	ProjectId    *int    `json:"project_id"`
	EnvelopeId   string  `json:"envelope_id"`
}

func (input *NewContract) validate(ctx context.Context) error {
	if !input.Company.IsValid() {
		return errors.New("invalid company")
	}
	if input.ProjectId != nil {
		if err := utils.ValidateResourceId[Project](ctx, *input.ProjectId); err != nil {
			return errors.New("project not found")
		}
	}
	return nil
}

func CreateContract(ctx context.Context, input *NewContract) (*Contract, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	contract := Contract{
		Title:        input.Title,
		Counterparty: input.Counterparty,
		Company:      input.Company,
		ProjectId:    input.ProjectId,
		Status:       ContractStatusDraft,
		EnvelopeId:   input.EnvelopeId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func UpdateContract(ctx context.Context, id int, input *NewContract) (*Contract, error) {
	contract, err := utils.FetchModel[Contract](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if contract.Status == ContractStatusSigned {
		return nil, errors.New("signed contracts cannot be edited")
	}

	contract.Title = input.Title
	contract.Counterparty = input.Counterparty
	contract.Company = input.Company
	contract.ProjectId = input.ProjectId
	contract.EnvelopeId = input.EnvelopeId

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(contract).Error; err != nil {
		return nil, err
	}
	return contract, nil
}

// contractTransitions lists the allowed forward moves per current status.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusDraft:  {ContractStatusSent, ContractStatusVoided},
	ContractStatusSent:   {ContractStatusSigned, ContractStatusVoided},
	ContractStatusSigned: {},
	ContractStatusVoided: {},
}

// UpdateContractStatus advances the contract through its status machine.
// Signed and voided are terminal.
func UpdateContractStatus(ctx context.Context, id int, status ContractStatus) (*Contract, error) {
	if !status.IsValid() {
		return nil, errors.New("invalid contract status")
	}
	contract, err := utils.FetchModel[Contract](ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range contractTransitions[contract.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.New("invalid contract status transition")
	}

	contract.Status = status
	if status == ContractStatusSigned {
		now := time.Now()
		contract.SignedAt = &now
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Save(contract).Error; err != nil {
		return nil, err
	}
	return contract, nil
}

func GetContract(ctx context.Context, id int) (*Contract, error) {
	return utils.FetchModel[Contract](ctx, id)
}

func ListContracts(ctx context.Context, company Company) ([]*Contract, error) {
	if company != "" {
		if !company.IsValid() {
			return nil, errors.New("invalid company")
		}
		return utils.FetchModelsWhere[Contract](ctx, "company = ?", company)
	}
	return utils.FetchAllModels[Contract](ctx)
}

func DeleteContract(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Contract{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
