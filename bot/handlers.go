// Package bot adapts the conversation machine to the Telegram transport:
// commands and callbacks are registered on the shared registry, machine
// replies are rendered as messages with inline keyboards.
package bot

import (
	"strings"

	"github.com/AlexBit99/MyMISiSAdventures/bot/conversation"
	tg "github.com/AlexBit99/MyMISiSAdventures/core/telegram"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/callbacks"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/commands"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Handlers exposes the bot's commands and callbacks over a single machine.
type Handlers struct {
	machine *conversation.Machine
}

// New builds the transport handlers around the conversation machine.
func New(machine *conversation.Machine) *Handlers {
	return &Handlers{machine: machine}
}

func identity(c tele.Context) conversation.Identity {
	sender := c.Sender()
	if sender == nil {
		return conversation.Identity{}
	}
	return conversation.Identity{
		TelegramID: sender.ID,
		Name:       displayName(sender),
	}
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.Username
	}
	return name
}

// InProgress satisfies the text router's conversation interface.
func (h *Handlers) InProgress(userID int64) bool {
	return h.machine.InProgress(userID)
}

// HandleText feeds a mid-flow text message into the machine.
func (h *Handlers) HandleText(c tele.Context) error {
	ctx := helpers.WithHandler(c, "conversation")
	id := identity(c)
	if h.machine.PendingCheck(id.TelegramID) {
		_ = helpers.SendText(c, textCheckingEssay)
	}
	replies, err := h.machine.HandleText(ctx, id, c.Text())
	if sendErr := sendReplies(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

func (h *Handlers) onStart(c tele.Context) error {
	ctx := helpers.WithHandler(c, "start")
	if err := h.machine.Register(ctx, identity(c)); err != nil {
		return err
	}
	return helpers.SendPlain(c, textWelcome, mainBoard())
}

func (h *Handlers) onMenu(c tele.Context) error {
	return helpers.SendPlain(c, textMenu, mainBoard())
}

func (h *Handlers) onHelp(c tele.Context) error {
	return helpers.SendPlain(c, textHelp, mainBoard())
}

func (h *Handlers) onWrite(c tele.Context) error {
	ctx := helpers.WithHandler(c, "write")
	return sendReply(c, h.machine.StartWrite(ctx, identity(c)))
}

func (h *Handlers) onCheck(c tele.Context) error {
	ctx := helpers.WithHandler(c, "check")
	return sendReply(c, h.machine.StartCheck(ctx, identity(c)))
}

func (h *Handlers) onTemplates(c tele.Context) error {
	ctx := helpers.WithHandler(c, "templates")
	return sendReplies(c, h.machine.StartTemplates(ctx, identity(c)))
}

func (h *Handlers) onHistory(c tele.Context) error {
	ctx := helpers.WithHandler(c, "history")
	replies, err := h.machine.OpenHistory(ctx, identity(c))
	if sendErr := sendReplies(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

// callback builds a handler that forwards the pressed affordance into the
// machine. When progress text is given, the triggering message is switched to
// it first so slow generation is visibly in flight.
func (h *Handlers) callback(action, progress string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.WithHandler(c, "callback."+action)
		id := identity(c)

		showProgress := progress != "" && h.machine.InProgress(id.TelegramID)
		if showProgress {
			_ = c.Edit(progress)
		}

		replies, err := h.machine.HandleCallback(ctx, id, action, callbacks.CallbackPayload(c))
		if showProgress && len(replies) == 0 && err == nil {
			// The press turned out to be a no-op; take the progress text back.
			_ = c.Edit(textUnknownAction)
		}
		if sendErr := sendReplies(c, replies); sendErr != nil {
			return sendErr
		}
		return err
	}
}

// Register wires all commands and callbacks into the shared registry.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.onStart,
		Description: "Start working with the bot",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     h.onMenu,
		Description: "Show the main menu",
		Aliases:     []string{labelMenu, "Menu"},
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.onHelp,
		Description: "How to use the bot",
		Aliases:     []string{labelHelp, "Help"},
	})
	reg.RegisterCommand("/write", commands.Command{
		Handler:     h.onWrite,
		Description: "Write an essay on a topic",
		Aliases:     []string{labelWrite},
	})
	reg.RegisterCommand("/check", commands.Command{
		Handler:     h.onCheck,
		Description: "Check an essay for mistakes",
		Aliases:     []string{labelCheck},
	})
	reg.RegisterCommand("/templates", commands.Command{
		Handler:     h.onTemplates,
		Description: "Manage essay templates",
		Aliases:     []string{labelTemplates},
	})
	reg.RegisterCommand("/history", commands.Command{
		Handler:     h.onHistory,
		Description: "Browse your saved essays",
		Aliases:     []string{labelHistory},
	})

	plain := []string{
		conversation.ActionChooseTemplate,
		conversation.ActionListTemplates,
		conversation.ActionNewTemplate,
		conversation.ActionUseTemplate,
		conversation.ActionHistoryPrev,
		conversation.ActionHistoryNext,
		conversation.ActionViewEssay,
		conversation.ActionHistoryBack,
		conversation.ActionCloseHistory,
	}
	for _, action := range plain {
		_ = reg.RegisterCallback(action, h.callback(action, ""))
	}
	_ = reg.RegisterCallback(conversation.ActionUseDefaultTemplate, h.callback(conversation.ActionUseDefaultTemplate, textWritingEssay))
	_ = reg.RegisterCallback(conversation.ActionPickTemplate, h.callback(conversation.ActionPickTemplate, textWritingEssay))

	fb := Fallback{}
	reg.SetTextFallback(fb.UnknownText())
	reg.SetCallbackNotFound(fb.UnknownCallback())
}
