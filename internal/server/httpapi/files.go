package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/services"
)

// optionalID reads an id from a query or form value, mapping "" to nil.
func optionalID(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// handleUpload ingests a multipart batch from the "files" field. An optional
// "folderId" field targets a folder; absent means the caller's root.
func (rt *Router) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "expected multipart form")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		badRequest(c, "no files in request")
		return
	}
	folderID := optionalID(c.PostForm("folderId"))

	items := make([]services.UploadItem, 0, len(headers))
	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			badRequest(c, "unreadable file part")
			return
		}
		opened = append(opened, f)
		items = append(items, services.UploadItem{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	results, err := rt.files.Upload(c.Request.Context(), currentUserID(c), folderID, items)
	if err != nil {
		writeError(c, err)
		return
	}

	type itemResponse struct {
		Name  string        `json:"name"`
		File  *fileResponse `json:"file,omitempty"`
		Error string        `json:"error,omitempty"`
	}
	out := make([]itemResponse, 0, len(results))
	status := http.StatusCreated
	for _, r := range results {
		item := itemResponse{Name: r.Name}
		if r.Err != nil {
			item.Error = "upload failed"
			status = http.StatusMultiStatus
		} else {
			resp := toFileResponse(r.File)
			item.File = &resp
		}
		out = append(out, item)
	}
	c.JSON(status, gin.H{"results": out})
}

func (rt *Router) handleListFiles(c *gin.Context) {
	files, err := rt.files.List(c.Request.Context(), currentUserID(c), optionalID(c.Query("folderId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": toFileResponses(files)})
}

func (rt *Router) handleGetFile(c *gin.Context) {
	file, err := rt.files.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(file))
}

func (rt *Router) handleFileContent(c *gin.Context) {
	file, obj, err := rt.files.Content(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer obj.Body.Close()
	rt.streamObject(c, file.Name, obj.ContentType, obj.ContentLength, obj.Body)
}

func (rt *Router) streamObject(c *gin.Context, name, contentType string, length int64, body io.Reader) {
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	if length > 0 {
		c.Header("Content-Length", strconv.FormatInt(length, 10))
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		rt.logger.Warn(c.Request.Context(), "content stream interrupted", "error", err)
	}
}

type renameFileRequest struct {
	Name string `json:"name" binding:"required"`
}

func (rt *Router) handleRenameFile(c *gin.Context) {
	var req renameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	file, err := rt.files.Rename(c.Request.Context(), currentUserID(c), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(file))
}

type moveFileRequest struct {
	FolderID *string `json:"folderId"`
}

func (rt *Router) handleMoveFile(c *gin.Context) {
	var req moveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	file, err := rt.files.Move(c.Request.Context(), currentUserID(c), c.Param("id"), req.FolderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(file))
}

func (rt *Router) handleDeleteFile(c *gin.Context) {
	if err := rt.files.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rt *Router) handleStorageUsage(c *gin.Context) {
	usage, err := rt.quota.Usage(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"used":        usage.UserUsed,
		"limit":       usage.UserLimit,
		"globalUsed":  usage.GlobalUsed,
		"globalLimit": usage.GlobalLimit,
	})
}

func (rt *Router) handleStorageReconcile(c *gin.Context) {
	used, err := rt.quota.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"globalUsed": used})
}
