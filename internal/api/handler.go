package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"gradepulse/internal/attendance"
	"gradepulse/internal/config"
	"gradepulse/internal/fields"
	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/internal/replies"
	"gradepulse/internal/roster"
	"gradepulse/internal/storage"
	"gradepulse/internal/students"
	"gradepulse/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type SectionLister interface {
	ListByYear(ctx context.Context, academicYear string) ([]*model.ClassSection, error)
}

type SessionStore interface {
	Save(ctx context.Context, session model.UploadSession) error
	Get(ctx context.Context, id string) (*model.UploadSession, error)
	Delete(ctx context.Context, id string) error
}

// Deps wires the handler. Sessions and Archive may be nil, which disables
// upload archiving and re-preview.
type Deps struct {
	Config     *config.Config
	Importer   *roster.Importer
	Committer  *roster.Committer
	Fields     *fields.Service
	Students   *students.Service
	Sections   SectionLister
	Attendance *attendance.Service
	Alerts     *attendance.AlertService
	Replies    *replies.Service
	Sessions   SessionStore
	Archive    storage.Storage
}

type Handler struct {
	importer   *roster.Importer
	committer  *roster.Committer
	fields     *fields.Service
	students   *students.Service
	sections   SectionLister
	attendance *attendance.Service
	alerts     *attendance.AlertService
	replies    *replies.Service
	sessions   SessionStore
	archive    storage.Storage
	cfg        *config.Config
	now        func() time.Time
	log        zerolog.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		importer:   deps.Importer,
		committer:  deps.Committer,
		fields:     deps.Fields,
		students:   deps.Students,
		sections:   deps.Sections,
		attendance: deps.Attendance,
		alerts:     deps.Alerts,
		replies:    deps.Replies,
		sessions:   deps.Sessions,
		archive:    deps.Archive,
		cfg:        deps.Config,
		now:        time.Now,
		log:        logger.Component("api"),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// respondError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a generic 500.
func (h *Handler) respondError(c *gin.Context, err error, action string) {
	var verr errors.ValidationError
	switch {
	case stderrors.Is(err, errors.ErrEmptyFile),
		stderrors.Is(err, errors.ErrUnsupportedFormat),
		stderrors.Is(err, errors.ErrMissingHeader),
		stderrors.Is(err, errors.ErrInvalidFileFormat),
		stderrors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrSessionExpired):
		c.JSON(http.StatusNotFound, gin.H{"error": errors.ErrSessionExpired.Error()})
	case stderrors.Is(err, errors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrFieldExists),
		stderrors.Is(err, errors.ErrStudentExists),
		stderrors.Is(err, errors.ErrAlreadyMarked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg(action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
