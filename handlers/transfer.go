package handlers

import (
	"net/http"

	"docmeta/models"
	"docmeta/utils"

	"github.com/gin-gonic/gin"
)

type TransferRequest struct {
	EntryID   string `json:"entry_id" binding:"required"`
	EntryType int    `json:"entry_type" binding:"required"`
	DestID    string `json:"dest_id" binding:"required"`
}

func (r TransferRequest) entryType(c *gin.Context) (models.EntryType, bool) {
	t := models.EntryType(r.EntryType)
	if t != models.EntryTypeFolder && t != models.EntryTypeFile {
		utils.Error(c, http.StatusBadRequest, "invalid entry type")
		return 0, false
	}
	return t, true
}

// MoveEntry relocates a folder or file, routing across storage backends when
// either operand id is external.
func MoveEntry(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	entryType, ok := req.entryType(c)
	if !ok {
		return
	}

	result, err := getServices().Transfer.Move(c.Request.Context(), tenantID(c), userID(c), req.EntryID, entryType, req.DestID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, result)
}

func CopyEntry(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	entryType, ok := req.entryType(c)
	if !ok {
		return
	}

	result, err := getServices().Transfer.Copy(c.Request.Context(), tenantID(c), userID(c), req.EntryID, entryType, req.DestID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, result)
}
