package api

import (
	"net/http"

	"gradepulse/internal/model"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitAttendance(c *gin.Context) {
	var sub model.AttendanceSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.attendance.Submit(c.Request.Context(), sub)
	if err != nil {
		h.respondError(c, err, "Failed to submit attendance")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ClassAttendance(c *gin.Context) {
	id, ok := paramID(c, "class_section_id")
	if !ok {
		return
	}
	students, err := h.attendance.ListForClass(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load class attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"class_section_id": id, "students": students})
}

func (h *Handler) AttendanceAlerts(c *gin.Context) {
	candidates, err := h.alerts.Candidates(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list attendance alerts")
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func (h *Handler) SendAttendanceAlerts(c *gin.Context) {
	var req model.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please select at least one student")
		return
	}

	result, err := h.alerts.Send(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to send attendance alerts")
		return
	}
	c.JSON(http.StatusOK, result)
}
