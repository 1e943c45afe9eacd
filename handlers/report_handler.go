package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const plSummaryCacheTTL = 10 * time.Minute

// PLSummary is the month view: every project's record plus per-company
// totals for the dashboard header.
type PLSummary struct {
	TargetMonth string                  `json:"target_month"`
	Records     []*PLSummaryRow         `json:"records"`
	Totals      map[string]*PLCompanyTotals `json:"totals"`
}

type PLSummaryRow struct {
	*models.PLRecord
	ProjectName string         `json:"project_name"`
	Company     models.Company `json:"company"`
}

type PLCompanyTotals struct {
	Revenue     decimal.Decimal `json:"revenue"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	ToolCost    decimal.Decimal `json:"tool_cost"`
	OtherCost   decimal.Decimal `json:"other_cost"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
}

func buildPLSummary(c *gin.Context, targetMonth string) (*PLSummary, error) {
	cacheKey := models.PLSummaryCacheKey(targetMonth)
	var cached PLSummary
	if found, err := config.GetRedisObject(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	ctx := c.Request.Context()
	records, err := models.ListPLRecords(ctx, targetMonth)
	if err != nil {
		return nil, err
	}

	projectIds := make([]int, 0, len(records))
	for _, record := range records {
		projectIds = append(projectIds, record.ProjectId)
	}
	projects, err := models.GetProjectsById(ctx, projectIds)
	if err != nil {
		return nil, err
	}

	summary := &PLSummary{
		TargetMonth: targetMonth,
		Records:     make([]*PLSummaryRow, 0, len(records)),
		Totals:      make(map[string]*PLCompanyTotals),
	}
	for _, record := range records {
		row := &PLSummaryRow{PLRecord: record}
		if project, ok := projects[record.ProjectId]; ok {
			row.ProjectName = project.Name
			row.Company = project.Company
		}
		summary.Records = append(summary.Records, row)

		totals, ok := summary.Totals[string(row.Company)]
		if !ok {
			totals = &PLCompanyTotals{}
			summary.Totals[string(row.Company)] = totals
		}
		totals.Revenue = totals.Revenue.Add(record.RevenueContract).Add(record.RevenueExtra)
		totals.LaborCost = totals.LaborCost.Add(record.LaborCost)
		totals.ToolCost = totals.ToolCost.Add(record.ToolCost)
		totals.OtherCost = totals.OtherCost.Add(record.OtherCost)
		totals.GrossProfit = totals.GrossProfit.Add(record.GrossProfit)
	}
	_ = config.SetRedisObject(cacheKey, summary, plSummaryCacheTTL)
	return summary, nil
}

func PLSummaryHandler(c *gin.Context) {
	month := c.Query("month")
	if _, err := utils.ParseTargetMonth(month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := buildPLSummary(c, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportPLSummaryHandler streams the month's PL summary as an xlsx sheet.
func ExportPLSummaryHandler(c *gin.Context) {
	month := c.Query("month")
	if _, err := utils.ParseTargetMonth(month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := buildPLSummary(c, month)
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "Project")
	f.SetCellValue("Sheet1", "B1", "Company")
	f.SetCellValue("Sheet1", "C1", "RevenueContract")
	f.SetCellValue("Sheet1", "D1", "RevenueExtra")
	f.SetCellValue("Sheet1", "E1", "LaborCost")
	f.SetCellValue("Sheet1", "F1", "ToolCost")
	f.SetCellValue("Sheet1", "G1", "OtherCost")
	f.SetCellValue("Sheet1", "H1", "GrossProfit")
	f.SetCellValue("Sheet1", "I1", "GrossProfitRate")

	// Add data
	for i, row := range summary.Records {
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), row.ProjectName)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), string(row.Company))
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), row.RevenueContract.String())
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), row.RevenueExtra.String())
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), row.LaborCost.String())
		f.SetCellValue("Sheet1", "F"+fmt.Sprint(i+2), row.ToolCost.String())
		f.SetCellValue("Sheet1", "G"+fmt.Sprint(i+2), row.OtherCost.String())
		f.SetCellValue("Sheet1", "H"+fmt.Sprint(i+2), row.GrossProfit.String())
		f.SetCellValue("Sheet1", "I"+fmt.Sprint(i+2), row.GrossProfitRate.String())
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pl_%s.xlsx", month))
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
	}
}
