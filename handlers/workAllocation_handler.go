package handlers

import (
	"net/http"
	"strconv"

	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/gin-gonic/gin"
)

// SubmitWorkAllocationHandler records self-reported hours. Non-admin callers
// can only submit for their own linked member; admins may pass any member id.
func SubmitWorkAllocationHandler(c *gin.Context) {
	var input models.NewWorkAllocation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	ctx := c.Request.Context()
	isOperator, _ := utils.GetIsOperatorFromContext(ctx)
	if !isOperator {
		memberId, ok := utils.GetMemberIdFromContext(ctx)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "no member linked to this account"})
			return
		}
		if input.MemberId != 0 && input.MemberId != memberId {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot submit hours for another member"})
			return
		}
		input.MemberId = memberId
	}
	if input.MemberId == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id is required"})
		return
	}

	allocation, err := models.SubmitWorkAllocation(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocation)
}

func ListWorkAllocationsHandler(c *gin.Context) {
	targetMonth := c.Query("month")
	memberId, _ := strconv.Atoi(c.Query("member_id"))
	allocations, err := models.ListWorkAllocations(c.Request.Context(), targetMonth, memberId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocations)
}
