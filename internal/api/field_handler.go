package api

import (
	"net/http"

	"gradepulse/internal/model"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListFields(c *gin.Context) {
	defs, err := h.fields.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list fields")
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": defs})
}

func (h *Handler) CreateField(c *gin.Context) {
	var req model.FieldRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	def, err := h.fields.Add(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to add field")
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (h *Handler) UpdateField(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.FieldRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	def, err := h.fields.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err, "Failed to update field")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *Handler) ToggleField(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	def, err := h.fields.Toggle(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to toggle field")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *Handler) DeleteField(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.fields.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete field")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Field deleted"})
}

func (h *Handler) ReorderFields(c *gin.Context) {
	var req model.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.fields.Reorder(c.Request.Context(), req.IDs); err != nil {
		h.respondError(c, err, "Failed to reorder fields")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fields reordered"})
}
