// Package conversation drives the multi-turn essay flows: one step per
// inbound event, with per-user sessions as working memory. It is
// transport-free; Telegram handlers adapt updates to machine calls and render
// the returned replies.
package conversation

// State identifies a step in a multi-turn flow.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateAwaitingTopic waits for the essay topic after /write.
	StateAwaitingTopic State = "awaiting_essay_topic"
	// StateChoosingTemplate waits for the default-vs-saved template choice.
	StateChoosingTemplate State = "awaiting_template_choice"
	// StateSelectingTemplate waits for a saved template to be picked.
	StateSelectingTemplate State = "selecting_template"
	// StateAwaitingEssayCheck waits for an essay to review after /check.
	StateAwaitingEssayCheck State = "awaiting_essay_check"
	// StateAwaitingTemplateName waits for the name of a new template.
	StateAwaitingTemplateName State = "awaiting_template_name"
	// StateAwaitingTemplateContent waits for the body of a new template.
	StateAwaitingTemplateContent State = "awaiting_template_content"
	// StateBrowsingHistory is active while a paginated history view is open.
	StateBrowsingHistory State = "browsing_history"
)

// Session is the per-user working memory for an in-progress flow. At most one
// session exists per user; starting a new top-level command replaces it.
type Session struct {
	State State
	// Topic is the pending essay topic captured during the write flow.
	Topic string
	// UserID is the resolved storage identity captured with the topic.
	UserID int64
	// TemplateName is the pending name captured mid template creation.
	TemplateName string
}
