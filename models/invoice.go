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

// Invoice covers both directions of money flow. Cash-in invoices are issued
// to clients; cash-out invoices record spending (vendor bills, expenses).
type Invoice struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Number     string          `gorm:"size:64;uniqueIndex;not null" json:"number" binding:"required"`
	Company    Company         `gorm:"size:16;not null;index" json:"company" binding:"required"`
	ClientName string          `gorm:"size:255" json:"client_name"`
	IsCashIn   *bool           `gorm:"not null;default:true" json:"is_cash_in"`
	Status     InvoiceStatus   `gorm:"size:16;not null;default:'draft';index" json:"status"`
	IssueMonth string          `gorm:"size:7;not null;index" json:"issue_month" binding:"required"`
	TotalYen   decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"total_yen"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	LineItems []*InvoiceLineItem `gorm:"foreignKey:InvoiceId" json:"line_items,omitempty"`
}

// InvoiceLineItem may optionally be linked to a project; linked non-taxable
// cash-out items feed the project's otherCost during PL generation.
type InvoiceLineItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	ProjectId   *int            `gorm:"index" json:"project_id"`
	Description string          `gorm:"size:512;not null" json:"description" binding:"required"`
	AmountYen   decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"amount_yen"`
	IsTaxable   *bool           `gorm:"not null;default:true" json:"is_taxable"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoiceLineItem struct {
	ProjectId   *int            `json:"project_id"`
	Description string          `json:"description" binding:"required"`
	AmountYen   decimal.Decimal `json:"amount_yen"`
	IsTaxable   *bool           `json:"is_taxable"`
}

type NewInvoice struct {
	Number     string                `json:"number" binding:"required"`
	Company    Company               `json:"company" binding:"required"`
	ClientName string                `json:"client_name"`
	IsCashIn   *bool                 `json:"is_cash_in"`
	Status     InvoiceStatus         `json:"status"`
	IssueMonth string                `json:"issue_month" binding:"required"`
	LineItems  []*NewInvoiceLineItem `json:"line_items"`
}

func (input *NewInvoice) validate(ctx context.Context, exceptId int) error {
	if !input.Company.IsValid() {
		return errors.New("invalid company")
	}
	if input.Status == "" {
		input.Status = InvoiceStatusDraft
	}
	if !input.Status.IsValid() {
		return errors.New("invalid invoice status")
	}
	if _, err := utils.ParseTargetMonth(input.IssueMonth); err != nil {
		return errors.New("issue month must be in YYYY-MM format")
	}
	if err := utils.ValidateUnique[Invoice](ctx, "number", input.Number, exceptId); err != nil {
		return err
	}
	for _, item := range input.LineItems {
		if item.AmountYen.IsNegative() {
			return errors.New("line item amount cannot be negative")
		}
		if item.ProjectId != nil {
			if err := utils.ValidateResourceId[Project](ctx, *item.ProjectId); err != nil {
				return errors.New("line item project not found")
			}
		}
	}
	return nil
}

func (input *NewInvoice) buildLineItems() []*InvoiceLineItem {
	items := make([]*InvoiceLineItem, 0, len(input.LineItems))
	for _, in := range input.LineItems {
		item := &InvoiceLineItem{
			ProjectId:   in.ProjectId,
			Description: in.Description,
			AmountYen:   in.AmountYen,
			IsTaxable:   in.IsTaxable,
		}
		if item.IsTaxable == nil {
			item.IsTaxable = utils.NewTrue()
		}
		items = append(items, item)
	}
	return items
}

func sumLineItems(items []*InvoiceLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.AmountYen)
	}
	return total
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	invoice := Invoice{
		Number:     input.Number,
		Company:    input.Company,
		ClientName: input.ClientName,
		IsCashIn:   input.IsCashIn,
		Status:     input.Status,
		IssueMonth: input.IssueMonth,
		LineItems:  input.buildLineItems(),
	}
	if invoice.IsCashIn == nil {
		invoice.IsCashIn = utils.NewTrue()
	}
	invoice.TotalYen = sumLineItems(invoice.LineItems)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice replaces the invoice header and its full line item set.
func UpdateInvoice(ctx context.Context, id int, input *NewInvoice) (*Invoice, error) {
	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	invoice.Number = input.Number
	invoice.Company = input.Company
	invoice.ClientName = input.ClientName
	if input.IsCashIn != nil {
		invoice.IsCashIn = input.IsCashIn
	}
	invoice.Status = input.Status
	invoice.IssueMonth = input.IssueMonth
	newItems := input.buildLineItems()
	invoice.TotalYen = sumLineItems(newItems)

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&InvoiceLineItem{}).Error; err != nil {
			return err
		}
		for _, item := range newItems {
			item.InvoiceId = invoice.ID
		}
		invoice.LineItems = newItems
		return tx.Save(invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func UpdateInvoiceStatus(ctx context.Context, id int, status InvoiceStatus) (*Invoice, error) {
	if !status.IsValid() {
		return nil, errors.New("invalid invoice status")
	}
	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Status = status
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(invoice).Update("status", status).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	return utils.FetchModel[Invoice](ctx, id, "LineItems")
}

func ListInvoices(ctx context.Context, company Company, issueMonth string) ([]*Invoice, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("LineItems")
	if company != "" {
		if !company.IsValid() {
			return nil, errors.New("invalid company")
		}
		dbCtx = dbCtx.Where("company = ?", company)
	}
	if issueMonth != "" {
		if _, err := utils.ParseTargetMonth(issueMonth); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("issue_month = ?", issueMonth)
	}
	var invoices []*Invoice
	if err := dbCtx.Order("issue_month DESC, number").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func DeleteInvoice(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Invoice{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// SumClientCashIn totals cash-in invoices for the company and month that
// have progressed past draft (sent or confirmed). Paid and void invoices do
// not count toward expected cash-in.
func SumClientCashIn(ctx context.Context, company Company, month string) (decimal.Decimal, error) {
	db := config.GetDB()
	total := decimal.Zero
	err := db.WithContext(ctx).Model(&Invoice{}).
		Where("company = ? AND issue_month = ? AND is_cash_in = ? AND status IN ?",
			company, month, true, CashInStatuses).
		Select("COALESCE(SUM(total_yen), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumProjectExpenseItems totals project-linked non-taxable cash-out line
// items for the month, grouped by project. These become each project's
// auto-computed otherCost.
func SumProjectExpenseItems(ctx context.Context, month string) (map[int]decimal.Decimal, error) {
	db := config.GetDB()
	var rows []struct {
		ProjectId int
		Total     decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(`
		SELECT li.project_id, COALESCE(SUM(li.amount_yen), 0) AS total
		FROM invoice_line_items li
		JOIN invoices i ON i.id = li.invoice_id AND i.deleted_at IS NULL
		WHERE i.issue_month = ?
		  AND i.is_cash_in = 0
		  AND i.status <> 'void'
		  AND li.project_id IS NOT NULL
		  AND li.is_taxable = 0
		GROUP BY li.project_id
	`, month).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byProject := make(map[int]decimal.Decimal, len(rows))
	for _, row := range rows {
		byProject[row.ProjectId] = row.Total
	}
	return byProject, nil
}

// SumExpenseLineItems totals non-taxable cash-out spending attributed to the
// company for the month. Linked line items follow their project's company,
// regardless of which company's invoice carries them. Unlinked line items
// count only for SALT2, where company-level overheads are booked without a
// project.
func SumExpenseLineItems(ctx context.Context, company Company, month string) (decimal.Decimal, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Table("invoice_line_items li").
		Joins("JOIN invoices i ON i.id = li.invoice_id AND i.deleted_at IS NULL").
		Joins("LEFT JOIN projects p ON p.id = li.project_id AND p.deleted_at IS NULL").
		Where("i.issue_month = ? AND i.is_cash_in = 0 AND i.status <> 'void' AND li.is_taxable = 0", month)
	if company == CompanySalt2 {
		dbCtx = dbCtx.Where("p.company = ? OR (li.project_id IS NULL AND i.company = ?)", company, company)
	} else {
		dbCtx = dbCtx.Where("p.company = ?", company)
	}
	total := decimal.Zero
	err := dbCtx.Select("COALESCE(SUM(li.amount_yen), 0)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
