package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/gin-gonic/gin"
)

func memberFromContext(c *gin.Context) (int, bool) {
	memberId, ok := utils.GetMemberIdFromContext(c.Request.Context())
	if !ok || memberId == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no member linked to this account"})
		return 0, false
	}
	return memberId, true
}

func ClockInHandler(c *gin.Context) {
	memberId, ok := memberFromContext(c)
	if !ok {
		return
	}
	attendance, err := models.ClockIn(c.Request.Context(), memberId, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attendance)
}

func ClockOutHandler(c *gin.Context) {
	memberId, ok := memberFromContext(c)
	if !ok {
		return
	}
	attendance, err := models.ClockOut(c.Request.Context(), memberId, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attendance)
}

// UpsertAttendanceHandler is the admin correction path for past records.
func UpsertAttendanceHandler(c *gin.Context) {
	var input models.NewAttendance
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	attendance, err := models.UpsertAttendance(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attendance)
}

func ListAttendancesHandler(c *gin.Context) {
	memberId, _ := strconv.Atoi(c.Query("member_id"))
	attendances, err := models.ListAttendances(c.Request.Context(), memberId, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attendances)
}
