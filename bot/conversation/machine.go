package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/AlexBit99/MyMISiSAdventures/ai"
	"github.com/AlexBit99/MyMISiSAdventures/core/logger"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/format"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/helpers"
	"github.com/AlexBit99/MyMISiSAdventures/core/telegram/pager"
	"github.com/AlexBit99/MyMISiSAdventures/storage"
)

// UserDirectory resolves transport identities to stored users.
type UserDirectory interface {
	GetOrCreate(ctx context.Context, tgID int64, name string) (storage.User, error)
}

// EssayStore persists and lists generated essays.
type EssayStore interface {
	Create(ctx context.Context, userID int64, topic, content string) (storage.Essay, error)
	ListByUser(ctx context.Context, userID int64) ([]storage.Essay, error)
	GetByID(ctx context.Context, id int64) (storage.Essay, error)
}

// TemplateStore persists and lists essay outlines.
type TemplateStore interface {
	Create(ctx context.Context, userID int64, name, content string) (storage.Template, error)
	ListByUser(ctx context.Context, userID int64) ([]storage.Template, error)
	GetByID(ctx context.Context, id int64) (storage.Template, error)
	GetDefault(ctx context.Context) (storage.Template, error)
}

// CheckLog records essay-check exchanges.
type CheckLog interface {
	Create(ctx context.Context, userID int64, text, answer string) (storage.Message, error)
}

// Options tune machine behaviour.
type Options struct {
	// PageSize is the number of history items per page; 0 -> 5.
	PageSize int
	// ChunkLimit is the outbound text boundary; 0 -> format.MaxMessageLen.
	ChunkLimit int
	// DefaultOutline is the built-in essay outline used when no default
	// template row exists.
	DefaultOutline string
	// NotifyMissing makes a vanished template/essay produce a user-visible
	// notice instead of a silent return to idle.
	NotifyMissing bool
}

// Machine advances a user through the essay flows, one step per event.
// Events for the same user are serialized with a per-user lock so the
// session read-modify-write never interleaves.
type Machine struct {
	sessions  Store
	users     UserDirectory
	essays    EssayStore
	templates TemplateStore
	checks    CheckLog
	gen       ai.Generator
	opts      Options
	locks     userLocks
}

// New wires a Machine from its collaborators.
func New(sessions Store, users UserDirectory, essays EssayStore, templates TemplateStore, checks CheckLog, gen ai.Generator, opts Options) *Machine {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.ChunkLimit <= 0 {
		opts.ChunkLimit = format.MaxMessageLen
	}
	return &Machine{
		sessions:  sessions,
		users:     users,
		essays:    essays,
		templates: templates,
		checks:    checks,
		gen:       gen,
		opts:      opts,
	}
}

const (
	msgTopicPrompt           = "What should the essay be about? Send me the topic."
	msgCheckPrompt           = "Send me the essay text and I will check it for mistakes."
	msgTemplatesPrompt       = "Templates are saved essay outlines you can reuse when writing."
	msgTemplateNamePrompt    = "Enter a name for the new template:"
	msgTemplateContentPrompt = "Now enter the template content (the essay outline, point by point):"
	msgNoTemplates           = "You have no templates yet. Create one via /templates"
	msgNoEssays              = "You have no saved essays yet."
	msgUseTemplateHint       = "To use a template, start a new essay with /write"
	msgBrowsingHint          = "Press \"Close history\" to leave the history view, or use the bot commands."
	msgUseMenu               = "Please use the commands from the menu, or press /menu"
	msgTryAgain              = "Something went wrong, please try again."
	msgTemplateGone          = "That template is no longer available."
	msgEssayGone             = "That essay is no longer available."
	msgHistoryClosed         = "History closed."
)

// userLocks serializes transitions per user. The generation call happens
// under the lock on purpose: one flow turn at a time per user.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Register makes sure the interacting user has a stored row. Flows create
// users lazily as well, so this only matters for greeting first contact.
func (m *Machine) Register(ctx context.Context, id Identity) error {
	_, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	return err
}

// InProgress reports whether the user currently has an active flow; mid-flow
// free text is routed to HandleText instead of command matching.
func (m *Machine) InProgress(tgID int64) bool {
	s, ok := m.sessions.Get(tgID)
	return ok && s.State != StateIdle
}

// PendingCheck reports whether the user's next text message will be treated
// as an essay to review; the transport uses it to show review progress.
func (m *Machine) PendingCheck(tgID int64) bool {
	s, ok := m.sessions.Get(tgID)
	return ok && s.State == StateAwaitingEssayCheck
}

// abandon implements the "last command wins" rule: entering any top-level
// command discards whatever flow was pending.
func (m *Machine) abandon(tgID int64) {
	m.sessions.Clear(tgID)
}

// StartWrite begins the essay-writing flow.
func (m *Machine) StartWrite(ctx context.Context, id Identity) Reply {
	defer m.locks.lock(id.TelegramID)()
	m.abandon(id.TelegramID)
	m.sessions.Put(id.TelegramID, Session{State: StateAwaitingTopic})
	m.logTransition(ctx, id.TelegramID, StateAwaitingTopic)
	return menuText(msgTopicPrompt)
}

// StartCheck begins the essay-review flow.
func (m *Machine) StartCheck(ctx context.Context, id Identity) Reply {
	defer m.locks.lock(id.TelegramID)()
	m.abandon(id.TelegramID)
	m.sessions.Put(id.TelegramID, Session{State: StateAwaitingEssayCheck})
	m.logTransition(ctx, id.TelegramID, StateAwaitingEssayCheck)
	return menuText(msgCheckPrompt)
}

// StartTemplates offers the template actions. State stays idle until a
// sub-action is chosen.
func (m *Machine) StartTemplates(ctx context.Context, id Identity) []Reply {
	defer m.locks.lock(id.TelegramID)()
	m.abandon(id.TelegramID)
	actions := Reply{
		Text: "Choose an action:",
		Buttons: [][]Button{
			{
				{Label: "My templates", Action: ActionListTemplates},
				{Label: "New template", Action: ActionNewTemplate},
			},
			{
				{Label: "Use a template", Action: ActionUseTemplate},
			},
		},
	}
	return []Reply{menuText(msgTemplatesPrompt), actions}
}

// OpenHistory builds a paginated snapshot of the user's essays and enters the
// browsing state. The snapshot stays stable for the lifetime of the view.
func (m *Machine) OpenHistory(ctx context.Context, id Identity) ([]Reply, error) {
	defer m.locks.lock(id.TelegramID)()

	m.abandon(id.TelegramID)

	user, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	if err != nil {
		return []Reply{menuText(msgTryAgain)}, err
	}
	essays, err := m.essays.ListByUser(ctx, user.ID)
	if err != nil {
		return []Reply{menuText(msgTryAgain)}, err
	}
	if len(essays) == 0 {
		return []Reply{menuText(msgNoEssays)}, nil
	}

	view := &HistoryView{Essays: essays}
	m.sessions.PutHistory(id.TelegramID, view)
	m.sessions.Put(id.TelegramID, Session{State: StateBrowsingHistory})
	m.logTransition(ctx, id.TelegramID, StateBrowsingHistory)

	return []Reply{m.renderHistoryPage(view, 0, false)}, nil
}

// HandleText consumes a free-text message against the current state.
func (m *Machine) HandleText(ctx context.Context, id Identity, msg string) ([]Reply, error) {
	defer m.locks.lock(id.TelegramID)()

	sess, _ := m.sessions.Get(id.TelegramID)

	switch sess.State {
	case StateAwaitingTopic, StateChoosingTemplate:
		return m.captureTopic(ctx, id, msg)
	case StateAwaitingEssayCheck:
		return m.runCheck(ctx, id, msg)
	case StateAwaitingTemplateName:
		sess.TemplateName = msg
		sess.State = StateAwaitingTemplateContent
		m.sessions.Put(id.TelegramID, sess)
		m.logTransition(ctx, id.TelegramID, StateAwaitingTemplateContent)
		return []Reply{text(msgTemplateContentPrompt)}, nil
	case StateAwaitingTemplateContent:
		return m.saveTemplate(ctx, id, sess, msg)
	case StateBrowsingHistory:
		return []Reply{text(msgBrowsingHint)}, nil
	default:
		return []Reply{menuText(msgUseMenu)}, nil
	}
}

// captureTopic records the topic and offers the template choice. Receiving
// another text while the choice is open simply re-captures the topic.
func (m *Machine) captureTopic(ctx context.Context, id Identity, topic string) ([]Reply, error) {
	user, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	if err != nil {
		m.sessions.Clear(id.TelegramID)
		return []Reply{menuText(msgTryAgain)}, err
	}

	m.sessions.Put(id.TelegramID, Session{
		State:  StateChoosingTemplate,
		Topic:  topic,
		UserID: user.ID,
	})
	m.logTransition(ctx, id.TelegramID, StateChoosingTemplate)

	choice := Reply{
		Text: fmt.Sprintf("Essay topic: %s\n\n%s", topic, m.opts.DefaultOutline),
		Buttons: [][]Button{
			{
				{Label: "Use the default template", Action: ActionUseDefaultTemplate},
				{Label: "Choose my template", Action: ActionChooseTemplate},
			},
		},
	}
	return []Reply{choice}, nil
}

// HandleCallback consumes an affordance selection. Unknown actions and
// selections arriving in the wrong state are ignored without a transition.
func (m *Machine) HandleCallback(ctx context.Context, id Identity, action, payload string) ([]Reply, error) {
	defer m.locks.lock(id.TelegramID)()

	switch action {
	case ActionUseDefaultTemplate:
		return m.writeWithDefault(ctx, id)
	case ActionChooseTemplate:
		return m.offerTemplates(ctx, id)
	case ActionPickTemplate:
		return m.writeWithTemplate(ctx, id, payload)
	case ActionListTemplates:
		return m.listTemplates(ctx, id)
	case ActionNewTemplate:
		sess, _ := m.sessions.Get(id.TelegramID)
		sess.State = StateAwaitingTemplateName
		m.sessions.Put(id.TelegramID, sess)
		m.logTransition(ctx, id.TelegramID, StateAwaitingTemplateName)
		return []Reply{text(msgTemplateNamePrompt)}, nil
	case ActionUseTemplate:
		return []Reply{text(msgUseTemplateHint)}, nil
	case ActionHistoryPrev:
		return m.turnHistoryPage(id, payload, -1), nil
	case ActionHistoryNext:
		return m.turnHistoryPage(id, payload, +1), nil
	case ActionViewEssay:
		return m.viewEssay(ctx, id, payload)
	case ActionHistoryBack:
		if view, ok := m.sessions.History(id.TelegramID); ok {
			return []Reply{m.renderHistoryPage(view, view.Page, true)}, nil
		}
		return nil, nil
	case ActionCloseHistory:
		m.sessions.ClearHistory(id.TelegramID)
		m.sessions.Clear(id.TelegramID)
		return []Reply{editText(msgHistoryClosed)}, nil
	default:
		// Malformed or stale affordance payloads are dropped.
		return nil, nil
	}
}

func (m *Machine) writeWithDefault(ctx context.Context, id Identity) ([]Reply, error) {
	sess, _ := m.sessions.Get(id.TelegramID)
	if sess.Topic == "" {
		return nil, nil
	}

	outline := m.opts.DefaultOutline
	if tpl, err := m.templates.GetDefault(ctx); err == nil {
		outline = tpl.Content
	} else if !errors.Is(err, storage.ErrNotFound) {
		return m.failFlow(id, err)
	}

	return m.generateEssay(ctx, id, sess, outline)
}

func (m *Machine) offerTemplates(ctx context.Context, id Identity) ([]Reply, error) {
	user, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	if err != nil {
		return m.failFlow(id, err)
	}
	templates, err := m.templates.ListByUser(ctx, user.ID)
	if err != nil {
		return m.failFlow(id, err)
	}

	if len(templates) == 0 {
		m.sessions.Clear(id.TelegramID)
		return []Reply{menuText(msgNoTemplates)}, nil
	}

	rows := make([][]Button, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, []Button{{
			Label:   t.Name,
			Action:  ActionPickTemplate,
			Payload: strconv.FormatInt(t.ID, 10),
		}})
	}

	sess, _ := m.sessions.Get(id.TelegramID)
	sess.State = StateSelectingTemplate
	m.sessions.Put(id.TelegramID, sess)
	m.logTransition(ctx, id.TelegramID, StateSelectingTemplate)

	return []Reply{{Text: "Choose your template:", Buttons: rows}}, nil
}

func (m *Machine) writeWithTemplate(ctx context.Context, id Identity, payload string) ([]Reply, error) {
	sess, _ := m.sessions.Get(id.TelegramID)
	if sess.State != StateSelectingTemplate || sess.Topic == "" {
		return nil, nil
	}

	templateID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return nil, nil
	}

	tpl, err := m.templates.GetByID(ctx, templateID)
	if errors.Is(err, storage.ErrNotFound) {
		// The template vanished between listing and selection.
		m.sessions.Clear(id.TelegramID)
		if m.opts.NotifyMissing {
			return []Reply{menuText(msgTemplateGone)}, nil
		}
		return nil, nil
	}
	if err != nil {
		return m.failFlow(id, err)
	}

	return m.generateEssay(ctx, id, sess, tpl.Content)
}

// generateEssay runs the generation service, persists the essay and ends the
// write flow. The essay is only created on successful generation.
func (m *Machine) generateEssay(ctx context.Context, id Identity, sess Session, outline string) ([]Reply, error) {
	content, err := m.gen.WriteEssay(ctx, sess.Topic, outline)
	if err != nil {
		return m.failFlow(id, err)
	}
	content = format.Sanitize(content)

	essay, err := m.essays.Create(ctx, sess.UserID, sess.Topic, content)
	if err != nil {
		return m.failFlow(id, err)
	}

	m.sessions.Clear(id.TelegramID)
	logger.Info(ctx, "conversation", "essay.written",
		slog.Int64("user_id", id.TelegramID),
		slog.Int64("essay_id", essay.ID),
		slog.String("topic", logger.SanitizeLimit(sess.Topic, 128)),
	)

	full := fmt.Sprintf("Essay on the topic: %s\n\n%s\n\nThe essay has been saved to your history!", sess.Topic, content)
	return m.chunked(full, true), nil
}

func (m *Machine) runCheck(ctx context.Context, id Identity, essayText string) ([]Reply, error) {
	user, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	if err != nil {
		return m.failFlow(id, err)
	}

	answer, err := m.gen.CheckEssay(ctx, essayText)
	if err != nil {
		return m.failFlow(id, err)
	}
	answer = format.Sanitize(answer)

	if _, err := m.checks.Create(ctx, user.ID, essayText, answer); err != nil {
		return m.failFlow(id, err)
	}

	m.sessions.Clear(id.TelegramID)
	return m.chunked("Check results:\n\n"+answer, false), nil
}

func (m *Machine) saveTemplate(ctx context.Context, id Identity, sess Session, content string) ([]Reply, error) {
	user, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	if err != nil {
		return m.failFlow(id, err)
	}
	tpl, err := m.templates.Create(ctx, user.ID, sess.TemplateName, content)
	if err != nil {
		return m.failFlow(id, err)
	}

	m.sessions.Clear(id.TelegramID)
	return []Reply{menuText(fmt.Sprintf("Template %q has been saved!", tpl.Name))}, nil
}

func (m *Machine) listTemplates(ctx context.Context, id Identity) ([]Reply, error) {
	user, err := m.users.GetOrCreate(ctx, id.TelegramID, id.Name)
	if err != nil {
		return []Reply{text(msgTryAgain)}, err
	}
	templates, err := m.templates.ListByUser(ctx, user.ID)
	if err != nil {
		return []Reply{text(msgTryAgain)}, err
	}

	if len(templates) == 0 {
		return []Reply{text("You have no templates yet. Create one!")}, nil
	}

	out := "Your templates:\n\n"
	for _, t := range templates {
		out += fmt.Sprintf("• %s (created: %s)\n", t.Name, helpers.FormatDate(t.CreatedAt))
	}
	return []Reply{text(out)}, nil
}

func (m *Machine) turnHistoryPage(id Identity, payload string, dir int) []Reply {
	view, ok := m.sessions.History(id.TelegramID)
	if !ok {
		return nil
	}
	current, err := strconv.Atoi(payload)
	if err != nil {
		current = view.Page
	}
	return []Reply{m.renderHistoryPage(view, current+dir, true)}
}

// renderHistoryPage renders one page of the cached snapshot and remembers the
// effective page index on the view.
func (m *Machine) renderHistoryPage(view *HistoryView, page int, edit bool) Reply {
	p := pager.Compute(len(view.Essays), page, m.opts.PageSize)
	view.Page = p.Index

	out := fmt.Sprintf("Essay history (page %d/%d):\n\n", p.Index+1, p.Count)
	rows := make([][]Button, 0, p.End-p.Start+2)
	for i, essay := range view.Essays[p.Start:p.End] {
		num := p.Start + i + 1
		out += fmt.Sprintf("%d. %s (%s)\n", num, essay.Topic, helpers.FormatDateTime(essay.CreatedAt))
		rows = append(rows, []Button{{
			Label:   fmt.Sprintf("%d. %s", num, truncate(essay.Topic, 30)),
			Action:  ActionViewEssay,
			Payload: strconv.FormatInt(essay.ID, 10),
		}})
	}

	pageToken := strconv.Itoa(p.Index)
	var nav []Button
	if p.HasPrev {
		nav = append(nav, Button{Label: "Back", Action: ActionHistoryPrev, Payload: pageToken})
	}
	if p.HasNext {
		nav = append(nav, Button{Label: "Forward", Action: ActionHistoryNext, Payload: pageToken})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []Button{{Label: "Close history", Action: ActionCloseHistory}})

	return Reply{Text: out, Buttons: rows, Edit: edit}
}

// viewEssay shows one essay in full. It never perturbs the stored page index,
// so "back to list" returns exactly where the user was.
func (m *Machine) viewEssay(ctx context.Context, id Identity, payload string) ([]Reply, error) {
	essayID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return nil, nil
	}

	essay, err := m.essays.GetByID(ctx, essayID)
	if errors.Is(err, storage.ErrNotFound) {
		if m.opts.NotifyMissing {
			return []Reply{editText(msgEssayGone)}, nil
		}
		return nil, nil
	}
	if err != nil {
		return []Reply{editText(msgTryAgain)}, err
	}

	header := fmt.Sprintf("Essay: %s\nDate: %s\n\n", essay.Topic, helpers.FormatDateTime(essay.CreatedAt))
	replies := m.chunked(header+essay.Content, true)
	replies[0].Buttons = [][]Button{{{Label: "Back to the list", Action: ActionHistoryBack}}}
	return replies, nil
}

// chunked splits text at the transport boundary. The first piece carries the
// edit flag; follow-up pieces are plain messages labelled with their part
// number.
func (m *Machine) chunked(full string, edit bool) []Reply {
	parts := format.Chunk(full, m.opts.ChunkLimit)
	if len(parts) <= 1 {
		r := Reply{Text: full, Edit: edit}
		return []Reply{r}
	}
	replies := make([]Reply, 0, len(parts))
	for i, part := range parts {
		r := Reply{Text: fmt.Sprintf("Part %d/%d:\n\n%s", i+1, len(parts), part)}
		if i == 0 {
			r.Edit = edit
		}
		replies = append(replies, r)
	}
	return replies
}

// failFlow resets the session so a backend failure never leaves the user
// parked mid-flow, and surfaces a friendly message while the raw error goes
// to the handler summary log.
func (m *Machine) failFlow(id Identity, err error) ([]Reply, error) {
	m.sessions.Clear(id.TelegramID)
	return []Reply{menuText(msgTryAgain)}, err
}

func (m *Machine) logTransition(ctx context.Context, tgID int64, to State) {
	logger.Debug(ctx, "conversation", "state.enter",
		slog.Int64("user_id", tgID),
		slog.String("state", string(to)),
	)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
