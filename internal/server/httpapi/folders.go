package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createFolderRequest struct {
	Name        string  `json:"name" binding:"required"`
	ParentID    *string `json:"parentId"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
}

func (rt *Router) handleCreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	folder, err := rt.folders.Create(c.Request.Context(), currentUserID(c),
		req.ParentID, req.Name, req.Description, req.Color)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFolderResponse(folder))
}

func (rt *Router) handleListFolders(c *gin.Context) {
	folders, err := rt.folders.List(c.Request.Context(), currentUserID(c), optionalID(c.Query("parentId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": toFolderResponses(folders)})
}

func (rt *Router) handleGetFolder(c *gin.Context) {
	contents, err := rt.folders.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFolderContentsResponse(contents))
}

type updateFolderRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (rt *Router) handleUpdateFolder(c *gin.Context) {
	var req updateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	folder, err := rt.folders.Update(c.Request.Context(), currentUserID(c),
		c.Param("id"), req.Name, req.Description, req.Color)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFolderResponse(folder))
}

type moveFolderRequest struct {
	ParentID *string `json:"parentId"`
}

func (rt *Router) handleMoveFolder(c *gin.Context) {
	var req moveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	folder, err := rt.folders.Move(c.Request.Context(), currentUserID(c), c.Param("id"), req.ParentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFolderResponse(folder))
}

func (rt *Router) handleDeleteFolder(c *gin.Context) {
	if err := rt.folders.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
