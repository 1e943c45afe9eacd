package handlers

import (
	"net/http"
	"strconv"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/boost-jp/ops_backend/workflow"
	"github.com/gin-gonic/gin"
)

// GetCashflowHandler recomputes and returns the company's cashflow record
// for the month, without touching the manual fields.
func GetCashflowHandler(c *gin.Context) {
	company := models.Company(c.Query("company"))
	month := c.Query("month")
	record, err := workflow.GetOrUpdateCashflow(c.Request.Context(), config.GetLogger(), company, month, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type cashflowUpdateInput struct {
	Company     models.Company               `json:"company" binding:"required"`
	TargetMonth string                       `json:"target_month" binding:"required"`
	Manual      workflow.CashflowManualInput `json:"manual"`
}

// UpdateCashflowHandler applies operator-entered fields and returns the
// recomputed record.
func UpdateCashflowHandler(c *gin.Context) {
	var input cashflowUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	record, err := workflow.GetOrUpdateCashflow(c.Request.Context(), config.GetLogger(), input.Company, input.TargetMonth, &input.Manual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func ListCashflowHandler(c *gin.Context) {
	company := models.Company(c.Query("company"))
	months, _ := strconv.Atoi(c.Query("months"))
	if months <= 0 {
		months = 12
	}
	records, err := models.ListCashflowRecords(c.Request.Context(), company, months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
