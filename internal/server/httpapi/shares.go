package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

type shareFolderRequest struct {
	FolderID   string `json:"folderId" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Permission string `json:"permission" binding:"required"`
}

func (rt *Router) handleShareFolder(c *gin.Context) {
	var req shareFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	permission := models.ParsePermission(req.Permission)
	if permission == models.PermissionNone {
		badRequest(c, "permission must be view, edit, or admin")
		return
	}
	share, err := rt.shares.ShareWithEmail(c.Request.Context(), currentUserID(c),
		req.FolderID, req.Email, permission)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toShareResponse(share))
}

type createLinkRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (rt *Router) handleCreatePublicLink(c *gin.Context) {
	var req createLinkRequest
	_ = c.ShouldBindJSON(&req)
	share, err := rt.shares.CreatePublicLink(c.Request.Context(), currentUserID(c),
		c.Param("id"), req.ExpiresAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toShareResponse(share))
}

func (rt *Router) handleShareMembers(c *gin.Context) {
	members, err := rt.shares.Members(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]shareResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toShareResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

type updateShareRequest struct {
	Permission string `json:"permission" binding:"required"`
}

func (rt *Router) handleUpdateShare(c *gin.Context) {
	var req updateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	permission := models.ParsePermission(req.Permission)
	if permission == models.PermissionNone {
		badRequest(c, "permission must be view, edit, or admin")
		return
	}
	share, err := rt.shares.UpdatePermission(c.Request.Context(), currentUserID(c),
		c.Param("id"), permission)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShareResponse(share))
}

func (rt *Router) handleRemoveShare(c *gin.Context) {
	if err := rt.shares.Remove(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rt *Router) handleSharedWithMe(c *gin.Context) {
	shared, err := rt.shares.SharedWithMe(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	type sharedFolderResponse struct {
		Share  shareResponse  `json:"share"`
		Folder folderResponse `json:"folder"`
	}
	out := make([]sharedFolderResponse, 0, len(shared))
	for _, s := range shared {
		out = append(out, sharedFolderResponse{
			Share:  toShareResponse(s.Share),
			Folder: toFolderResponse(s.Folder),
		})
	}
	c.JSON(http.StatusOK, gin.H{"shared": out})
}

func (rt *Router) handlePublicFolder(c *gin.Context) {
	contents, err := rt.folders.GetPublic(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFolderContentsResponse(contents))
}

func (rt *Router) handlePublicFileContent(c *gin.Context) {
	file, obj, err := rt.files.PublicContent(c.Request.Context(), c.Param("token"), c.Param("fileId"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer obj.Body.Close()
	rt.streamObject(c, file.Name, obj.ContentType, obj.ContentLength, obj.Body)
}
