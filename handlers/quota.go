package handlers

import (
	"docmeta/utils"

	"github.com/gin-gonic/gin"
)

// GetFolderQuota reports the quota bucket billing the folder.
func GetFolderQuota(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	status, err := getServices().Quota.FolderUsage(c.Request.Context(), tenantID(c), id)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, status)
}
