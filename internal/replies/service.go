package replies

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/internal/roster"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	ReplyStudentNotFound = "Student not found"
	ReplyChooseLanguage  = "Please reply with 1, 2, 3, or 4."
	ReplyOK              = "OK"

	channelPrefix = "whatsapp:"
)

// Languages maps a parent's numeric reply onto a language preference.
var Languages = map[string]string{
	"1": "ENGLISH",
	"2": "HINDI",
	"3": "TAMIL",
	"4": "KANNADA",
}

type Store interface {
	// FindByContact matches father, mother or guardian contact.
	FindByContact(ctx context.Context, contact string) (*model.Student, error)
	SetLanguagePreference(ctx context.Context, id int64, language string) error
}

type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// Service records language choices sent back by parents after the welcome message.
type Service struct {
	store    Store
	notifier Notifier
	log      zerolog.Logger
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier, log: logger.Component("replies")}
}

// Handle processes one inbound message and returns the text to answer the
// webhook with. Outbound confirmations are best effort.
func (s *Service) Handle(ctx context.Context, from, body string) (string, error) {
	sender := roster.NormalizeContact(strings.TrimPrefix(strings.TrimSpace(from), channelPrefix))

	student, err := s.store.FindByContact(ctx, sender)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			s.log.Info().Str("from", sender).Msg("Reply from unknown contact")
			return ReplyStudentNotFound, nil
		}
		return "", err
	}

	language, ok := Languages[strings.TrimSpace(body)]
	if !ok {
		s.send(ctx, sender, ReplyChooseLanguage)
		return ReplyOK, nil
	}

	if err := s.store.SetLanguagePreference(ctx, student.ID, language); err != nil {
		return "", fmt.Errorf("set language for %s: %w", student.StudentID.String, err)
	}
	s.log.Info().Str("student_id", student.StudentID.String).Str("language", language).Msg("Language preference set")

	s.send(ctx, sender, fmt.Sprintf("Language set to %s. Thank you!", language))
	for _, contact := range student.AllContacts() {
		if contact != sender {
			s.send(ctx, contact, fmt.Sprintf("%s's language: %s", student.FullName.String, language))
		}
	}
	return ReplyOK, nil
}

func (s *Service) send(ctx context.Context, to, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, to, body); err != nil {
		s.log.Warn().Err(err).Str("to", to).Msg("Failed to send reply")
	}
}
