package bot

import (
	"github.com/AlexBit99/MyMISiSAdventures/bot/conversation"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/helpers"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// mainBoard is the persistent reply keyboard shown with menu-level replies.
func mainBoard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{labelWrite, labelCheck},
		[]string{labelTemplates, labelHistory},
		[]string{labelMenu, labelHelp},
	)
}

func inlineMarkup(rows [][]conversation.Button) *tele.ReplyMarkup {
	btnRows := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{
				Text:   b.Label,
				Unique: b.Action,
				Data:   b.Payload,
			})
		}
		btnRows = append(btnRows, btns)
	}
	return keyboard.InlineButtonsRows(btnRows...)
}

func markupFor(r conversation.Reply) *tele.ReplyMarkup {
	if len(r.Buttons) > 0 {
		return inlineMarkup(r.Buttons)
	}
	if r.MainMenu {
		return mainBoard()
	}
	return nil
}

// sendReply renders a machine reply into the chat. Everything goes out without
// a parse mode so generated text is never re-interpreted as markup.
func sendReply(c tele.Context, r conversation.Reply) error {
	markup := markupFor(r)
	if r.Edit {
		return helpers.EditOrSendPlain(c, r.Text, markup)
	}
	return helpers.SendPlain(c, r.Text, markup)
}

func sendReplies(c tele.Context, replies []conversation.Reply) error {
	for _, r := range replies {
		if err := sendReply(c, r); err != nil {
			return err
		}
	}
	return nil
}
