package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gradepulse/internal/model"
	"gradepulse/internal/roster"
	"gradepulse/internal/storage"
	"gradepulse/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const confirmFormMemory = 32 << 20

func (h *Handler) DownloadTemplate(c *gin.Context) {
	active, err := h.fields.ListActive(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load active fields")
		return
	}

	var buf bytes.Buffer
	if err := roster.WriteTemplate(&buf, active); err != nil {
		h.respondError(c, err, "Failed to build template")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", roster.TemplateFilename))
	c.Data(http.StatusOK, storage.ContentType(roster.TemplateFilename), buf.Bytes())
}

// UploadRoster previews a multipart "file" upload and archives it for re-preview.
func (h *Handler) UploadRoster(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, errors.ErrEmptyFile, "No file in upload")
		return
	}
	if header.Size > h.cfg.Import.MaxUploadBytes {
		badRequest(c, fmt.Sprintf("file exceeds the %d byte upload limit", h.cfg.Import.MaxUploadBytes))
		return
	}

	f, err := header.Open()
	if err != nil {
		h.respondError(c, err, "Failed to open upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.respondError(c, err, "Failed to read upload")
		return
	}

	ctx := c.Request.Context()
	preview, err := h.importer.Preview(ctx, header.Filename, data)
	if err != nil {
		h.respondError(c, err, "Failed to preview upload")
		return
	}
	preview.UploadID = h.archiveUpload(ctx, header.Filename, data)

	h.log.Info().
		Str("filename", header.Filename).
		Str("upload_id", preview.UploadID).
		Int("rows", preview.TotalRows).
		Int("valid", preview.ValidCount).
		Msg("Upload previewed")
	c.JSON(http.StatusOK, preview)
}

// archiveUpload stores the file and its session. Failures only cost the ability
// to re-preview, so they are logged and an empty id is returned.
func (h *Handler) archiveUpload(ctx context.Context, filename string, data []byte) string {
	if h.archive == nil || h.sessions == nil {
		return ""
	}

	now := h.now()
	session := model.UploadSession{
		ID:        uuid.NewString(),
		Filename:  filename,
		Size:      int64(len(data)),
		CreatedAt: now,
	}
	session.StorageKey = storage.UploadKey(session.ID, filename, now)

	if err := h.archive.Upload(ctx, session.StorageKey, bytes.NewReader(data), storage.ContentType(filename)); err != nil {
		h.log.Warn().Err(err).Str("key", session.StorageKey).Msg("Failed to archive upload")
		return ""
	}
	if err := h.sessions.Save(ctx, session); err != nil {
		h.log.Warn().Err(err).Str("upload_id", session.ID).Msg("Failed to store upload session")
		return ""
	}
	return session.ID
}

func (h *Handler) GetUploadPreview(c *gin.Context) {
	if h.sessions == nil || h.archive == nil {
		h.respondError(c, errors.ErrSessionExpired, "Upload sessions disabled")
		return
	}

	ctx := c.Request.Context()
	session, err := h.sessions.Get(ctx, c.Param("upload_id"))
	if err != nil {
		h.respondError(c, err, "Failed to load upload session")
		return
	}

	body, err := h.archive.Download(ctx, session.StorageKey)
	if err != nil {
		// An archive that is gone behaves like an expired session.
		if stderrors.Is(err, errors.ErrNotFound) {
			err = errors.ErrSessionExpired
		}
		h.respondError(c, err, "Failed to fetch archived upload")
		return
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		h.respondError(c, err, "Failed to read archived upload")
		return
	}

	preview, err := h.importer.Preview(ctx, session.Filename, data)
	if err != nil {
		h.respondError(c, err, "Failed to preview archived upload")
		return
	}
	preview.UploadID = session.ID
	c.JSON(http.StatusOK, preview)
}

// ConfirmImport commits the rows submitted as rows[i].<field> form pairs.
func (h *Handler) ConfirmImport(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(confirmFormMemory); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		badRequest(c, "Invalid form submission")
		return
	}
	form := c.Request.PostForm

	opts := roster.CommitOptions{
		AcademicYear: strings.TrimSpace(form.Get("academic_year")),
		Board:        strings.TrimSpace(form.Get("board")),
	}
	if opts.AcademicYear == "" {
		opts.AcademicYear = h.cfg.Import.DefaultAcademicYear
	}
	if opts.Board == "" {
		opts.Board = h.cfg.Import.DefaultBoard
	}

	ctx := c.Request.Context()
	rows, err := h.importer.DecodeSubmission(ctx, form)
	if err != nil {
		h.respondError(c, err, "Failed to decode submission")
		return
	}
	if len(rows) == 0 {
		badRequest(c, "No rows submitted")
		return
	}

	result, err := h.committer.Commit(ctx, rows, opts)
	if err != nil {
		h.respondError(c, err, "Failed to commit import")
		return
	}

	if id := form.Get("upload_id"); id != "" {
		h.discardUpload(ctx, id)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": result.Summary(),
		"result":  result,
	})
}

// discardUpload removes a committed upload's archived file and its session.
// Failures are logged only.
func (h *Handler) discardUpload(ctx context.Context, id string) {
	if h.sessions == nil {
		return
	}
	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		if !stderrors.Is(err, errors.ErrSessionExpired) {
			h.log.Warn().Err(err).Str("upload_id", id).Msg("Failed to load upload session")
		}
		return
	}
	if h.archive != nil {
		if err := h.archive.Delete(ctx, session.StorageKey); err != nil {
			h.log.Warn().Err(err).Str("key", session.StorageKey).Msg("Failed to delete archived upload")
		}
	}
	if err := h.sessions.Delete(ctx, id); err != nil {
		h.log.Warn().Err(err).Str("upload_id", id).Msg("Failed to delete upload session")
	}
}
