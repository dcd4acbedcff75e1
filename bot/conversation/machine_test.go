package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AlexBit99/MyMISiSAdventures/storage"
)

type fakeUsers struct {
	nextID int64
	byTG   map[int64]storage.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byTG: make(map[int64]storage.User)}
}

func (f *fakeUsers) GetOrCreate(_ context.Context, tgID int64, name string) (storage.User, error) {
	if u, ok := f.byTG[tgID]; ok {
		return u, nil
	}
	f.nextID++
	u := storage.User{ID: f.nextID, TelegramID: tgID, Name: name}
	f.byTG[tgID] = u
	return u, nil
}

type fakeEssays struct {
	nextID int64
	items  []storage.Essay
	err    error
}

func (f *fakeEssays) Create(_ context.Context, userID int64, topic, content string) (storage.Essay, error) {
	if f.err != nil {
		return storage.Essay{}, f.err
	}
	f.nextID++
	e := storage.Essay{ID: f.nextID, UserID: userID, Topic: topic, Content: content, CreatedAt: time.Now()}
	f.items = append(f.items, e)
	return e, nil
}

func (f *fakeEssays) ListByUser(_ context.Context, userID int64) ([]storage.Essay, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []storage.Essay
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *fakeEssays) GetByID(_ context.Context, id int64) (storage.Essay, error) {
	for _, e := range f.items {
		if e.ID == id {
			return e, nil
		}
	}
	return storage.Essay{}, storage.ErrNotFound
}

type fakeTemplates struct {
	nextID int64
	items  []storage.Template
}

func (f *fakeTemplates) Create(_ context.Context, userID int64, name, content string) (storage.Template, error) {
	f.nextID++
	uid := userID
	t := storage.Template{ID: f.nextID, UserID: &uid, Name: name, Content: content}
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTemplates) ListByUser(_ context.Context, userID int64) ([]storage.Template, error) {
	var out []storage.Template
	for _, t := range f.items {
		if t.UserID != nil && *t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id int64) (storage.Template, error) {
	for _, t := range f.items {
		if t.ID == id {
			return t, nil
		}
	}
	return storage.Template{}, storage.ErrNotFound
}

func (f *fakeTemplates) GetDefault(_ context.Context) (storage.Template, error) {
	for _, t := range f.items {
		if t.IsDefault {
			return t, nil
		}
	}
	return storage.Template{}, storage.ErrNotFound
}

type fakeChecks struct {
	items []storage.Message
}

func (f *fakeChecks) Create(_ context.Context, userID int64, text, answer string) (storage.Message, error) {
	m := storage.Message{ID: int64(len(f.items) + 1), UserID: userID, Text: text, Answer: answer}
	f.items = append(f.items, m)
	return m, nil
}

type fakeGen struct {
	essay    string
	review   string
	err      error
	outlines []string
}

func (f *fakeGen) WriteEssay(_ context.Context, topic, outline string) (string, error) {
	f.outlines = append(f.outlines, outline)
	if f.err != nil {
		return "", f.err
	}
	return f.essay, nil
}

func (f *fakeGen) CheckEssay(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.review, nil
}

type fixture struct {
	machine   *Machine
	sessions  Store
	users     *fakeUsers
	essays    *fakeEssays
	templates *fakeTemplates
	checks    *fakeChecks
	gen       *fakeGen
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		sessions:  NewMemoryStore(0),
		users:     newFakeUsers(),
		essays:    &fakeEssays{},
		templates: &fakeTemplates{},
		checks:    &fakeChecks{},
		gen:       &fakeGen{essay: "generated essay", review: "looks fine"},
	}
	if opts.DefaultOutline == "" {
		opts.DefaultOutline = "1. Intro\n2. Body\n3. Conclusion"
	}
	f.machine = New(f.sessions, f.users, f.essays, f.templates, f.checks, f.gen, opts)
	return f
}

func (f *fixture) state(t *testing.T, tgID int64) State {
	t.Helper()
	s, ok := f.sessions.Get(tgID)
	if !ok {
		return StateIdle
	}
	return s.State
}

var alice = Identity{TelegramID: 100, Name: "Alice"}

func TestWriteFlowDefaultTemplate(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	f.machine.StartWrite(ctx, alice)
	if got := f.state(t, alice.TelegramID); got != StateAwaitingTopic {
		t.Fatalf("state after /write = %q, want %q", got, StateAwaitingTopic)
	}

	replies, err := f.machine.HandleText(ctx, alice, "climate change")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(replies) != 1 || len(replies[0].Buttons) == 0 {
		t.Fatalf("expected template choice with buttons, got %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateChoosingTemplate {
		t.Fatalf("state after topic = %q, want %q", got, StateChoosingTemplate)
	}

	replies, err = f.machine.HandleCallback(ctx, alice, ActionUseDefaultTemplate, "")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if len(replies) == 0 || !strings.Contains(replies[0].Text, "generated essay") {
		t.Fatalf("essay reply missing content: %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state after generation = %q, want idle", got)
	}
	if len(f.essays.items) != 1 {
		t.Fatalf("essays saved = %d, want 1", len(f.essays.items))
	}
	if f.essays.items[0].Topic != "climate change" {
		t.Fatalf("saved topic = %q", f.essays.items[0].Topic)
	}
}

func TestWriteFlowTopicRecapture(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "first topic"); err != nil {
		t.Fatal(err)
	}
	// A new text while the choice is open replaces the topic.
	if _, err := f.machine.HandleText(ctx, alice, "second topic"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.machine.HandleCallback(ctx, alice, ActionUseDefaultTemplate, ""); err != nil {
		t.Fatal(err)
	}
	if got := f.essays.items[0].Topic; got != "second topic" {
		t.Fatalf("saved topic = %q, want the re-captured one", got)
	}
}

func TestWriteFlowCustomTemplate(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	user, _ := f.users.GetOrCreate(ctx, alice.TelegramID, alice.Name)
	tpl, _ := f.templates.Create(ctx, user.ID, "argumentative", "thesis, antithesis, synthesis")

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "free will"); err != nil {
		t.Fatal(err)
	}

	replies, err := f.machine.HandleCallback(ctx, alice, ActionChooseTemplate, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || len(replies[0].Buttons) != 1 {
		t.Fatalf("expected one template button, got %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateSelectingTemplate {
		t.Fatalf("state = %q, want %q", got, StateSelectingTemplate)
	}

	if _, err := f.machine.HandleCallback(ctx, alice, ActionPickTemplate, strconv.FormatInt(tpl.ID, 10)); err != nil {
		t.Fatal(err)
	}
	if len(f.gen.outlines) != 1 || f.gen.outlines[0] != tpl.Content {
		t.Fatalf("generator outline = %v, want the picked template content", f.gen.outlines)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state after generation = %q, want idle", got)
	}
}

func TestChooseTemplateWithNoneSaved(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "anything"); err != nil {
		t.Fatal(err)
	}

	replies, err := f.machine.HandleCallback(ctx, alice, ActionChooseTemplate, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "no templates") {
		t.Fatalf("expected no-templates notice, got %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
}

func TestPickedTemplateVanished(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	user, _ := f.users.GetOrCreate(ctx, alice.TelegramID, alice.Name)
	tpl, _ := f.templates.Create(ctx, user.ID, "gone soon", "outline")

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "topic"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.machine.HandleCallback(ctx, alice, ActionChooseTemplate, ""); err != nil {
		t.Fatal(err)
	}

	f.templates.items = nil

	replies, err := f.machine.HandleCallback(ctx, alice, ActionPickTemplate, strconv.FormatInt(tpl.ID, 10))
	if err != nil {
		t.Fatalf("missing template must not be a fault: %v", err)
	}
	if len(replies) != 0 {
		t.Fatalf("default policy is silent, got %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if len(f.essays.items) != 0 {
		t.Fatalf("no essay should be created, got %d", len(f.essays.items))
	}
}

func TestPickedTemplateVanishedWithNotice(t *testing.T) {
	f := newFixture(Options{NotifyMissing: true})
	ctx := context.Background()

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "topic"); err != nil {
		t.Fatal(err)
	}
	sess, _ := f.sessions.Get(alice.TelegramID)
	sess.State = StateSelectingTemplate
	f.sessions.Put(alice.TelegramID, sess)

	replies, err := f.machine.HandleCallback(ctx, alice, ActionPickTemplate, "999")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "no longer available") {
		t.Fatalf("expected a notice, got %+v", replies)
	}
}

func TestGenerationFailureResetsSession(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	f.gen.err = errors.New("model unavailable")

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "doomed topic"); err != nil {
		t.Fatal(err)
	}

	replies, err := f.machine.HandleCallback(ctx, alice, ActionUseDefaultTemplate, "")
	if err == nil {
		t.Fatal("generation error must surface to the handler")
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "try again") {
		t.Fatalf("expected a friendly failure reply, got %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state after failure = %q, want idle", got)
	}
	if len(f.essays.items) != 0 {
		t.Fatalf("failed generation must not persist an essay")
	}
}

func TestCheckFlow(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	if f.machine.PendingCheck(alice.TelegramID) {
		t.Fatal("no check should be pending before /check")
	}
	f.machine.StartCheck(ctx, alice)
	if got := f.state(t, alice.TelegramID); got != StateAwaitingEssayCheck {
		t.Fatalf("state = %q, want %q", got, StateAwaitingEssayCheck)
	}
	if !f.machine.PendingCheck(alice.TelegramID) {
		t.Fatal("a check must be pending after /check")
	}

	replies, err := f.machine.HandleText(ctx, alice, "my essay with mistaks")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) == 0 || !strings.Contains(replies[0].Text, "looks fine") {
		t.Fatalf("review missing from reply: %+v", replies)
	}
	if len(f.checks.items) != 1 {
		t.Fatalf("check exchanges logged = %d, want 1", len(f.checks.items))
	}
	if f.checks.items[0].Text != "my essay with mistaks" {
		t.Fatalf("logged text = %q", f.checks.items[0].Text)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state after check = %q, want idle", got)
	}
	if f.machine.PendingCheck(alice.TelegramID) {
		t.Fatal("no check should be pending once the review is delivered")
	}
}

func TestLastCommandWins(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "abandoned topic"); err != nil {
		t.Fatal(err)
	}

	f.machine.StartCheck(ctx, alice)
	if got := f.state(t, alice.TelegramID); got != StateAwaitingEssayCheck {
		t.Fatalf("state = %q, want the new flow", got)
	}

	// The old choice callback must now be a no-op.
	replies, err := f.machine.HandleCallback(ctx, alice, ActionUseDefaultTemplate, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 0 {
		t.Fatalf("stale callback produced %+v", replies)
	}
	if len(f.essays.items) != 0 {
		t.Fatalf("abandoned flow must not write essays")
	}
}

func TestTemplateCreateFlow(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()

	f.machine.StartTemplates(ctx, alice)
	if _, err := f.machine.HandleCallback(ctx, alice, ActionNewTemplate, ""); err != nil {
		t.Fatal(err)
	}
	if got := f.state(t, alice.TelegramID); got != StateAwaitingTemplateName {
		t.Fatalf("state = %q, want %q", got, StateAwaitingTemplateName)
	}

	if _, err := f.machine.HandleText(ctx, alice, "five paragraph"); err != nil {
		t.Fatal(err)
	}
	if got := f.state(t, alice.TelegramID); got != StateAwaitingTemplateContent {
		t.Fatalf("state = %q, want %q", got, StateAwaitingTemplateContent)
	}

	replies, err := f.machine.HandleText(ctx, alice, "intro, three arguments, outro")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "five paragraph") {
		t.Fatalf("confirmation should echo the name: %+v", replies)
	}
	if len(f.templates.items) != 1 || f.templates.items[0].Content != "intro, three arguments, outro" {
		t.Fatalf("template not saved: %+v", f.templates.items)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state after save = %q, want idle", got)
	}
}

func TestIdleTextFallsBack(t *testing.T) {
	f := newFixture(Options{})

	if f.machine.InProgress(alice.TelegramID) {
		t.Fatal("fresh user must not be in progress")
	}
	replies, err := f.machine.HandleText(context.Background(), alice, "hello?")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "menu") {
		t.Fatalf("idle text should point at the menu: %+v", replies)
	}
}

func seedEssays(t *testing.T, f *fixture, n int) storage.User {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.GetOrCreate(ctx, alice.TelegramID, alice.Name)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= n; i++ {
		if _, err := f.essays.Create(ctx, user.ID, "topic "+strconv.Itoa(i), "body "+strconv.Itoa(i)); err != nil {
			t.Fatal(err)
		}
	}
	return user
}

func TestHistoryOpenAndPaging(t *testing.T) {
	f := newFixture(Options{PageSize: 5})
	ctx := context.Background()
	seedEssays(t, f, 12)

	replies, err := f.machine.OpenHistory(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 {
		t.Fatalf("open replies = %d, want 1", len(replies))
	}
	first := replies[0]
	if !strings.Contains(first.Text, "page 1/3") {
		t.Fatalf("page header missing: %q", first.Text)
	}
	// Newest first.
	if !strings.Contains(first.Text, "topic 12") || strings.Contains(first.Text, "topic 7") {
		t.Fatalf("unexpected page contents: %q", first.Text)
	}
	if got := f.state(t, alice.TelegramID); got != StateBrowsingHistory {
		t.Fatalf("state = %q, want %q", got, StateBrowsingHistory)
	}

	// Forward twice, then once more wraps to the first page.
	replies, _ = f.machine.HandleCallback(ctx, alice, ActionHistoryNext, "0")
	if !strings.Contains(replies[0].Text, "page 2/3") {
		t.Fatalf("expected page 2, got %q", replies[0].Text)
	}
	if !replies[0].Edit {
		t.Fatal("page turn must edit in place")
	}
	replies, _ = f.machine.HandleCallback(ctx, alice, ActionHistoryNext, "1")
	if !strings.Contains(replies[0].Text, "page 3/3") {
		t.Fatalf("expected page 3, got %q", replies[0].Text)
	}
	replies, _ = f.machine.HandleCallback(ctx, alice, ActionHistoryNext, "2")
	if !strings.Contains(replies[0].Text, "page 1/3") {
		t.Fatalf("forward from the last page should wrap, got %q", replies[0].Text)
	}

	// Backward from the first page wraps to the last.
	replies, _ = f.machine.HandleCallback(ctx, alice, ActionHistoryPrev, "0")
	if !strings.Contains(replies[0].Text, "page 3/3") {
		t.Fatalf("backward from the first page should wrap, got %q", replies[0].Text)
	}
}

func TestHistorySnapshotIsStable(t *testing.T) {
	f := newFixture(Options{PageSize: 5})
	ctx := context.Background()
	user := seedEssays(t, f, 6)

	if _, err := f.machine.OpenHistory(ctx, alice); err != nil {
		t.Fatal(err)
	}
	// A new essay saved mid-browse must not leak into the open view.
	if _, err := f.essays.Create(ctx, user.ID, "late arrival", "body"); err != nil {
		t.Fatal(err)
	}

	replies, _ := f.machine.HandleCallback(ctx, alice, ActionHistoryNext, "0")
	if strings.Contains(replies[0].Text, "late arrival") {
		t.Fatalf("snapshot leaked fresh data: %q", replies[0].Text)
	}
	if !strings.Contains(replies[0].Text, "page 2/2") {
		t.Fatalf("expected the snapshot's own page count, got %q", replies[0].Text)
	}
}

func TestHistoryViewEssayAndBack(t *testing.T) {
	f := newFixture(Options{PageSize: 5})
	ctx := context.Background()
	seedEssays(t, f, 7)

	if _, err := f.machine.OpenHistory(ctx, alice); err != nil {
		t.Fatal(err)
	}
	// Move to page 2 so "back" has a position to restore.
	if _, err := f.machine.HandleCallback(ctx, alice, ActionHistoryNext, "0"); err != nil {
		t.Fatal(err)
	}

	replies, err := f.machine.HandleCallback(ctx, alice, ActionViewEssay, "2")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) == 0 || !strings.Contains(replies[0].Text, "topic 2") {
		t.Fatalf("essay detail missing: %+v", replies)
	}
	if !replies[0].Edit {
		t.Fatal("detail view must edit the board message")
	}

	replies, err = f.machine.HandleCallback(ctx, alice, ActionHistoryBack, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(replies[0].Text, "page 2/2") {
		t.Fatalf("back should restore page 2, got %q", replies[0].Text)
	}
}

func TestHistoryClose(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	seedEssays(t, f, 3)

	if _, err := f.machine.OpenHistory(ctx, alice); err != nil {
		t.Fatal(err)
	}
	replies, err := f.machine.HandleCallback(ctx, alice, ActionCloseHistory, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || replies[0].Text != "History closed." {
		t.Fatalf("unexpected close reply: %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if _, ok := f.sessions.History(alice.TelegramID); ok {
		t.Fatal("history view must be dropped on close")
	}
}

func TestHistoryEmpty(t *testing.T) {
	f := newFixture(Options{})

	replies, err := f.machine.OpenHistory(context.Background(), alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "no saved essays") {
		t.Fatalf("expected empty-history notice, got %+v", replies)
	}
	if got := f.state(t, alice.TelegramID); got != StateIdle {
		t.Fatalf("empty history must not enter browsing, state = %q", got)
	}
}

func TestHistoryViewExpires(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute).(*memoryStore)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	store.PutHistory(alice.TelegramID, &HistoryView{Essays: []storage.Essay{{ID: 1}}})
	if _, ok := store.History(alice.TelegramID); !ok {
		t.Fatal("fresh view must be retrievable")
	}

	store.now = func() time.Time { return base.Add(11 * time.Minute) }
	if _, ok := store.History(alice.TelegramID); ok {
		t.Fatal("expired view must be evicted")
	}
}

func TestLongEssayIsChunked(t *testing.T) {
	f := newFixture(Options{ChunkLimit: 50})
	ctx := context.Background()
	f.gen.essay = strings.Repeat("sentence after sentence. ", 10)

	f.machine.StartWrite(ctx, alice)
	if _, err := f.machine.HandleText(ctx, alice, "t"); err != nil {
		t.Fatal(err)
	}
	replies, err := f.machine.HandleCallback(ctx, alice, ActionUseDefaultTemplate, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) < 2 {
		t.Fatalf("long essay must be split, got %d replies", len(replies))
	}
	if !strings.Contains(replies[0].Text, "Part 1/") {
		t.Fatalf("chunks should be labelled: %q", replies[0].Text)
	}
}
