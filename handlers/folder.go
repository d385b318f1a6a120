package handlers

import (
	"net/http"
	"strconv"

	"docmeta/models"
	"docmeta/services"
	"docmeta/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	ParentID   int64  `json:"parent_id" binding:"required"`
	Title      string `json:"title" binding:"required,max=255"`
	Type       int    `json:"type"`
	Private    bool   `json:"private"`
	Color      string `json:"color"`
	IndexingOn bool   `json:"indexing_on"`
	Quota      int64  `json:"quota"`
}

type RenameFolderRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type MoveFolderRequest struct {
	ParentID int64 `json:"parent_id" binding:"required"`
}

func folderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "invalid folder id")
		return 0, false
	}
	return id, true
}

func GetFolder(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	folder, err := getServices().Folder.GetFolder(c.Request.Context(), tenantID(c), id)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.CreateFolder(c.Request.Context(), tenantID(c), userID(c), services.CreateFolderInput{
		ParentID:   req.ParentID,
		Title:      req.Title,
		Type:       models.FolderType(req.Type),
		Private:    req.Private,
		Color:      req.Color,
		IndexingOn: req.IndexingOn,
		Quota:      req.Quota,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func RenameFolder(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.RenameFolder(c.Request.Context(), tenantID(c), userID(c), id, req.Title)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func MoveFolder(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	var req MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	err := getServices().Folder.MoveFolder(c.Request.Context(), tenantID(c), userID(c), id, req.ParentID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id, "parent_id": req.ParentID})
}

func DeleteFolder(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	if err := getServices().Folder.DeleteFolder(c.Request.Context(), tenantID(c), id); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id})
}

func GetFolderAncestors(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	chain, err := getServices().Folder.GetAncestors(c.Request.Context(), tenantID(c), id)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, chain)
}

func GetFolderDescendants(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	maxLevel, _ := strconv.Atoi(c.DefaultQuery("max_level", "0"))
	folders, err := getServices().Folder.GetDescendants(c.Request.Context(), tenantID(c), id, maxLevel)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folders)
}

func GetMyFolder(c *gin.Context) {
	folder, err := getServices().Folder.GetMyFolder(c.Request.Context(), tenantID(c), userID(c))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func GetTrashFolder(c *gin.Context) {
	folder, err := getServices().Folder.GetTrashFolder(c.Request.Context(), tenantID(c), userID(c))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func RecountFolders(c *gin.Context) {
	id, ok := folderIDParam(c)
	if !ok {
		return
	}
	if err := getServices().Folder.RecountFolders(c.Request.Context(), tenantID(c), id); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id})
}
