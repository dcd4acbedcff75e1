package bot

import (
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/helpers"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Fallback answers updates nothing else claimed.
type Fallback struct{}

var _ ui.FallbackProvider = Fallback{}

func (Fallback) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendPlain(c, textUnknown, mainBoard())
	}
}

func (Fallback) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendPlain(c, textUnknownDocument)
	}
}

func (Fallback) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textUnknownAction})
	}
}
