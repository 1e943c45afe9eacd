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

type generatePLInput struct {
	TargetMonth string `json:"target_month" binding:"required"`
}

// GeneratePLHandler triggers the monthly aggregation. Admin-only; the router
// guards it. A month with zero allocation rows succeeds with generated=0.
func GeneratePLHandler(c *gin.Context) {
	var input generatePLInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	result, err := workflow.GeneratePL(c.Request.Context(), config.GetLogger(), input.TargetMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func ListPLRecordsHandler(c *gin.Context) {
	records, err := models.ListPLRecords(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func ProjectPLHistoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	months, _ := strconv.Atoi(c.Query("months"))
	if months <= 0 {
		months = 12
	}
	records, err := models.ListPLRecordsByProject(c.Request.Context(), id, months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// OverridePLRecordHandler hand-edits the sticky fields of one record.
func OverridePLRecordHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	month := c.Query("month")
	if _, err := utils.ParseTargetMonth(month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var input models.PLRecordOverride
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	record, err := models.ApplyPLRecordOverride(c.Request.Context(), id, month, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
