package conversation

// Callback actions consumed by the machine. The transport layer registers
// them as callback keys and passes presses back via HandleCallback.
const (
	ActionUseDefaultTemplate = "write_default"
	ActionChooseTemplate     = "write_custom"
	ActionPickTemplate       = "tpl_pick"
	ActionListTemplates      = "tpl_list"
	ActionNewTemplate        = "tpl_new"
	ActionUseTemplate        = "tpl_use"
	ActionHistoryPrev        = "hist_prev"
	ActionHistoryNext        = "hist_next"
	ActionViewEssay          = "hist_view"
	ActionHistoryBack        = "hist_back"
	ActionCloseHistory       = "hist_close"
)

// Button describes a single inline affordance attached to a reply.
type Button struct {
	Label   string
	Action  string
	Payload string
}

// Reply is one outbound message produced by the machine. The transport layer
// renders buttons as an inline keyboard and honours Edit by updating the
// triggering message instead of sending a new one.
type Reply struct {
	Text    string
	Buttons [][]Button
	Edit    bool
	// MainMenu attaches the persistent reply keyboard.
	MainMenu bool
}

// Identity is the transport-level identity of the interacting user.
type Identity struct {
	TelegramID int64
	Name       string
}

func text(s string) Reply     { return Reply{Text: s} }
func menuText(s string) Reply { return Reply{Text: s, MainMenu: true} }
func editText(s string) Reply { return Reply{Text: s, Edit: true} }
