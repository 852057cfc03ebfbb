package convo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/carwise/internal/db"
)

// Contact-support relay: a single free-text step forwarded to the
// configured administrator chat.
const stateSupportMessage State = "support.message"

func (e *Engine) registerSupportFlow() {
	e.register(FlowContactSupport,
		func(ctx context.Context, s *Session) (Result, error) {
			if e.cfg.FeedbackChatID() == 0 {
				return completed("Support is not configured on this instance."), nil
			}
			s.State = stateSupportMessage
			return advance("Write your message for the administrator.\nSend /cancel to abort."), nil
		},
		map[State]stepFunc{
			stateSupportMessage: e.stepSupportMessage,
		})
}

func (e *Engine) stepSupportMessage(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please write a text message."), nil
	}

	sender := fmt.Sprintf("chat %d", s.ChatID)
	if user, err := e.stores.Users.FindByChatID(ctx, s.ChatID); err == nil {
		sender = fmt.Sprintf("%s (chat %d)", user.DisplayName(), s.ChatID)
	} else if !errors.Is(err, db.ErrUserNotFound) {
		e.log.WithError(err).Warn("failed to resolve support sender")
	}

	text := fmt.Sprintf("New support message\nFrom: %s\n\n%s", sender, in.Text)
	if err := e.notifier.Notify(ctx, e.cfg.FeedbackChatID(), text); err != nil {
		e.log.WithError(err).Error("support relay failed")
		return completed("Could not deliver your message right now. Please try again later."), nil
	}
	return completed("Your message has been sent to the administrator."), nil
}
