package handlers

import (
	"io"
	"net/http"
	"strconv"

	"docmeta/models"
	"docmeta/services"
	"docmeta/utils"

	"github.com/gin-gonic/gin"
)

type MoveFileRequest struct {
	FolderID int64 `json:"folder_id" binding:"required"`
}

type CopyFileRequest struct {
	FolderID int64 `json:"folder_id" binding:"required"`
}

func fileIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "invalid file id")
		return 0, false
	}
	return id, true
}

func versionParam(c *gin.Context) (int, bool) {
	v, err := strconv.Atoi(c.Param("version"))
	if err != nil || v <= 0 {
		utils.Error(c, http.StatusBadRequest, "invalid version")
		return 0, false
	}
	return v, true
}

func GetFile(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	file, err := getServices().File.GetFile(c.Request.Context(), tenantID(c), id)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}

func ListFileVersions(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	versions, err := getServices().File.ListVersions(c.Request.Context(), tenantID(c), id)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, versions)
}

// UploadFile stores a new file or a new version depending on the file_id
// form field.
func UploadFile(c *gin.Context) {
	folderID, _ := strconv.ParseInt(c.PostForm("folder_id"), 10, 64)
	fileID, _ := strconv.ParseInt(c.PostForm("file_id"), 10, 64)
	keepVersion := c.PostForm("keep_version") == "true"

	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "missing file part")
		return
	}
	src, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "open upload failed")
		return
	}
	defer src.Close()

	file, err := getServices().File.SaveFile(c.Request.Context(), tenantID(c), userID(c), services.SaveFileInput{
		FileID:        fileID,
		FolderID:      folderID,
		Title:         header.Filename,
		ContentLength: header.Size,
		Content:       src,
		KeepVersion:   keepVersion,
		Comment:       c.PostForm("comment"),
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}

func DownloadFile(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	version, _ := strconv.Atoi(c.DefaultQuery("version", "0"))

	svc := getServices().File
	var file models.File
	var err error
	if version > 0 {
		file, err = svc.GetFileVersion(c.Request.Context(), tenantID(c), id, version)
	} else {
		file, err = svc.GetFile(c.Request.Context(), tenantID(c), id)
	}
	if respondServiceError(c, err) {
		return
	}

	content, err := svc.ReadContent(c.Request.Context(), tenantID(c), id, version)
	if respondServiceError(c, err) {
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Title+`"`)
	c.Header("Content-Length", strconv.FormatInt(file.ContentLength, 10))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, content)
}

func DeleteFileVersion(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := getServices().File.DeleteVersion(c.Request.Context(), tenantID(c), id, version); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id, "version": version})
}

func CompleteFileVersion(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := getServices().File.CompleteVersion(c.Request.Context(), tenantID(c), id, version); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id, "version": version})
}

func ContinueFileVersion(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := getServices().File.ContinueVersion(c.Request.Context(), tenantID(c), id, version); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id, "version": version})
}

func MoveFile(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	var req MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := getServices().File.MoveFile(c.Request.Context(), tenantID(c), userID(c), id, req.FolderID); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id, "folder_id": req.FolderID})
}

func CopyFile(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	var req CopyFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	file, err := getServices().File.CopyFile(c.Request.Context(), tenantID(c), userID(c), id, req.FolderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}

func DeleteFile(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	if err := getServices().File.DeleteFile(c.Request.Context(), tenantID(c), id); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id})
}

func GenerateThumbnail(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}
	version, ok := versionParam(c)
	if !ok {
		return
	}
	if err := getServices().Thumbnail.Generate(c.Request.Context(), tenantID(c), id, version); respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"id": id, "version": version})
}
