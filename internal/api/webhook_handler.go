package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WhatsAppWebhook receives parent replies as the provider's form post and
// answers in plain text.
func (h *Handler) WhatsAppWebhook(c *gin.Context) {
	from := c.PostForm("From")
	if from == "" {
		badRequest(c, "From is required")
		return
	}

	reply, err := h.replies.Handle(c.Request.Context(), from, c.PostForm("Body"))
	if err != nil {
		h.log.Error().Err(err).Str("from", from).Msg("Failed to handle WhatsApp reply")
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	c.String(http.StatusOK, reply)
}
