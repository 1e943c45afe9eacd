package handlers

import (
	"net/http"
	"strconv"

	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/gin-gonic/gin"
)

func CreateSkillHandler(c *gin.Context) {
	var input models.NewSkill
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	skill, err := models.CreateSkill(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

func ListSkillsHandler(c *gin.Context) {
	skills, err := models.ListSkills(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

func DeleteSkillHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteSkill(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RateMemberSkillHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewMemberSkill
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	input.MemberId = id
	rating, err := models.RateMemberSkill(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func ListMemberSkillsHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ratings, err := models.ListMemberSkills(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func RemoveMemberSkillHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	skillId, err := strconv.Atoi(c.Param("skillId"))
	if err != nil || skillId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skill id"})
		return
	}
	if err := models.RemoveMemberSkill(c.Request.Context(), id, skillId); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
