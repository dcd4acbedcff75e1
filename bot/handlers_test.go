package bot

import (
	"testing"

	"github.com/AlexBit99/MyMISiSAdventures/bot/conversation"
	tg "github.com/AlexBit99/MyMISiSAdventures/core/telegram"
)

func newRegistry(t *testing.T) *tg.Registry {
	t.Helper()
	reg := tg.NewRegistry()
	New(&conversation.Machine{}).Register(reg)
	return reg
}

func TestBoardLabelsRouteToCommands(t *testing.T) {
	reg := newRegistry(t)

	cases := map[string]string{
		labelWrite:     "/write",
		labelCheck:     "/check",
		labelTemplates: "/templates",
		labelHistory:   "/history",
		labelMenu:      "/menu",
		labelHelp:      "/help",
		"Menu":         "/menu",
		"Help":         "/help",
	}
	for label, want := range cases {
		key, cmd, ok := reg.LookupCommand(label)
		if !ok {
			t.Fatalf("label %q is not routed to any command", label)
		}
		if key != want {
			t.Fatalf("label %q routed to %q, want %q", label, key, want)
		}
		if cmd.Handler == nil {
			t.Fatalf("label %q resolved without a handler", label)
		}
	}
}

func TestAllCallbackActionsRegistered(t *testing.T) {
	reg := newRegistry(t)

	actions := []string{
		conversation.ActionUseDefaultTemplate,
		conversation.ActionChooseTemplate,
		conversation.ActionPickTemplate,
		conversation.ActionListTemplates,
		conversation.ActionNewTemplate,
		conversation.ActionUseTemplate,
		conversation.ActionHistoryPrev,
		conversation.ActionHistoryNext,
		conversation.ActionViewEssay,
		conversation.ActionHistoryBack,
		conversation.ActionCloseHistory,
	}
	for _, action := range actions {
		if _, ok := reg.GetCallback(action); !ok {
			t.Fatalf("callback %q is not registered", action)
		}
	}
}
