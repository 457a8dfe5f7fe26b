package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCommentRequest struct {
	Text     string  `json:"text" binding:"required"`
	ParentID *string `json:"parentId"`
}

func (rt *Router) handleAddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	comment, err := rt.comments.Add(c.Request.Context(), currentUserID(c),
		c.Param("id"), req.Text, req.ParentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (rt *Router) handleListComments(c *gin.Context) {
	comments, err := rt.comments.List(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}

type updateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (rt *Router) handleUpdateComment(c *gin.Context) {
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	comment, err := rt.comments.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentResponse(comment))
}

func (rt *Router) handleDeleteComment(c *gin.Context) {
	if err := rt.comments.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
