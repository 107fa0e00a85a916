package api

import (
	"net/http"

	"gradepulse/internal/model"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListStudents(c *gin.Context) {
	var filter model.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	page, err := h.students.Search(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Failed to list students")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) StudentFilters(c *gin.Context) {
	opts, err := h.students.FilterOptions(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load student filters")
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		h.respondError(c, err, "Failed to load student")
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var input model.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err, "Failed to create student")
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var input model.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	student, err := h.students.Update(c.Request.Context(), c.Param("student_id"), input)
	if err != nil {
		h.respondError(c, err, "Failed to update student")
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("student_id")); err != nil {
		h.respondError(c, err, "Failed to delete student")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

func (h *Handler) ListClassSections(c *gin.Context) {
	year := c.DefaultQuery("academic_year", h.cfg.Import.DefaultAcademicYear)
	sections, err := h.sections.ListByYear(c.Request.Context(), year)
	if err != nil {
		h.respondError(c, err, "Failed to list class sections")
		return
	}

	type sectionView struct {
		*model.ClassSection
		DisplayName string `json:"display_name"`
	}
	out := make([]sectionView, 0, len(sections))
	for _, s := range sections {
		out = append(out, sectionView{ClassSection: s, DisplayName: s.FullName()})
	}
	c.JSON(http.StatusOK, gin.H{"academic_year": year, "class_sections": out})
}
