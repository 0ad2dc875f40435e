package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/mailer"
	"pinpoint.dev/pinpoint/internal/pkg/logger"
	"pinpoint.dev/pinpoint/internal/pkg/worker"
	"pinpoint.dev/pinpoint/internal/store"
)

func init() {
	_ = logger.Init("error", "console")
}

// fakeStore is an in-memory Store that records writes and counts reads.
type fakeStore struct {
	issues          map[string]store.IssueRef
	machines        map[string]store.MachineRef
	issueWatchers   map[string][]string
	machineWatchers map[string][]domain.MachineWatcher
	globalSubs      map[string][]string
	prefs           map[string]domain.Preference
	emails          map[string]string

	subscribedWatchers map[string]map[string]bool
	inserted           []domain.Notification
	prefQueries        int
	emailQueries       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		issues:             map[string]store.IssueRef{},
		machines:           map[string]store.MachineRef{},
		issueWatchers:      map[string][]string{},
		machineWatchers:    map[string][]domain.MachineWatcher{},
		globalSubs:         map[string][]string{},
		prefs:              map[string]domain.Preference{},
		emails:             map[string]string{},
		subscribedWatchers: map[string]map[string]bool{},
	}
}

func (f *fakeStore) GetIssueRef(_ context.Context, id string) (store.IssueRef, error) {
	ref, ok := f.issues[id]
	if !ok {
		return store.IssueRef{}, fmt.Errorf("issue %s not found", id)
	}
	return ref, nil
}

func (f *fakeStore) GetMachineRef(_ context.Context, id string) (store.MachineRef, error) {
	ref, ok := f.machines[id]
	if !ok {
		return store.MachineRef{}, fmt.Errorf("machine %s not found", id)
	}
	return ref, nil
}

func (f *fakeStore) FindIssueWatchers(_ context.Context, issueID string) ([]string, error) {
	return f.issueWatchers[issueID], nil
}

func (f *fakeStore) FindMachineWatchers(_ context.Context, machineID string) ([]domain.MachineWatcher, error) {
	return f.machineWatchers[machineID], nil
}

func (f *fakeStore) FindGlobalSubscriberIDs(_ context.Context, orgID string) ([]string, error) {
	return f.globalSubs[orgID], nil
}

func (f *fakeStore) FindPreferencesByUserIDs(_ context.Context, userIDs []string) ([]domain.Preference, error) {
	f.prefQueries++
	var out []domain.Preference
	for _, id := range userIDs {
		if p, ok := f.prefs[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindEmailsByUserIDs(_ context.Context, userIDs []string) (map[string]string, error) {
	f.emailQueries++
	out := map[string]string{}
	for _, id := range userIDs {
		if addr, ok := f.emails[id]; ok {
			out[id] = addr
		}
	}
	return out, nil
}

func (f *fakeStore) InsertIssueWatchers(_ context.Context, issueID string, userIDs []string) error {
	set := f.subscribedWatchers[issueID]
	if set == nil {
		set = map[string]bool{}
		f.subscribedWatchers[issueID] = set
	}
	for _, id := range userIDs {
		set[id] = true
	}
	return nil
}

func (f *fakeStore) InsertNotifications(_ context.Context, notifications []domain.Notification) error {
	f.inserted = append(f.inserted, notifications...)
	return nil
}

func (f *fakeStore) notifiedUsers() []string {
	var ids []string
	for _, n := range f.inserted {
		ids = append(ids, n.UserID)
	}
	sort.Strings(ids)
	return ids
}

// fakeMailer records sends and fails the addresses listed in failFor.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []string
	subjects []string
	failFor  map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
		return fmt.Errorf("smtp rejected %s", msg.To)
	}
	m.sent = append(m.sent, msg.To)
	m.subjects = append(m.subjects, msg.Subject)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.sent...)
	sort.Strings(out)
	return out
}

func newTestEngine(t *testing.T, m mailer.Mailer) *Engine {
	t.Helper()
	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 4, MailPoolSize: 4})
	if err != nil {
		t.Fatalf("NewPools: %v", err)
	}
	t.Cleanup(pools.Shutdown)
	return NewEngine(m, pools)
}

func seedIssue(f *fakeStore, issueID, orgID, machineID string) {
	f.issues[issueID] = store.IssueRef{
		ID: issueID, OrgID: orgID, MachineID: machineID,
		MachineName: "Medieval Madness", Title: "Left flipper dead", Number: 7,
	}
	f.machines[machineID] = store.MachineRef{ID: machineID, OrgID: orgID, Name: "Medieval Madness"}
}

func TestNotify_Dedup(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	// u1 reachable via global subscription AND a machine watch.
	f.globalSubs["org1"] = []string{"u1"}
	f.machineWatchers["m1"] = []domain.MachineWatcher{
		{MachineID: "m1", UserID: "u1", Mode: domain.WatchModeWatch},
	}
	p := domain.DefaultPreferences("u1")
	p.InAppWatchNewIssuesGlobal = true
	f.prefs["u1"] = p

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewIssue, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := f.notifiedUsers(); len(got) != 1 || got[0] != "u1" {
		t.Fatalf("expected exactly one notification for u1, got %v", got)
	}
}

func TestNotify_ActorExclusion(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.issueWatchers["i1"] = []string{"u1", "u2"}

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewComment, ResourceID: "i1", ResourceType: domain.ResourceIssue,
		ActorID: "u1", IncludeActor: false,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := f.notifiedUsers(); len(got) != 1 || got[0] != "u2" {
		t.Fatalf("actor must be excluded, got %v", got)
	}
}

func TestNotify_ActorInclusionOverride(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.issueWatchers["i1"] = []string{"u2"}

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventIssueAssigned, ResourceID: "i1", ResourceType: domain.ResourceIssue,
		ActorID: "u1", IncludeActor: true,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	want := []string{"u1", "u2"}
	got := f.notifiedUsers()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("actor must be force-added, got %v want %v", got, want)
	}
}

func TestNotify_FallbackDefaults(t *testing.T) {
	// u1 has no preference row: gets in-app for issue_assigned (toggle
	// defaults on) but is not a global subscriber (flag defaults off).
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.issueWatchers["i1"] = []string{"u1"}

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventIssueAssigned, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := f.notifiedUsers(); len(got) != 1 || got[0] != "u1" {
		t.Fatalf("default toggles must authorize in-app, got %v", got)
	}

	// A new_issue on the machine must not reach u1: they are not a machine
	// watcher and not a global subscriber.
	f2 := newFakeStore()
	seedIssue(f2, "i2", "org1", "m1")
	err = e.Notify(context.Background(), f2, domain.Event{
		Type: domain.EventNewIssue, ResourceID: "i2", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(f2.inserted) != 0 {
		t.Fatalf("no recipients expected, got %v", f2.notifiedUsers())
	}
}

func TestNotify_NewIssueORGating(t *testing.T) {
	// Per-event email toggle off, global email watch on: the OR of the two
	// pairs still authorizes the email channel.
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.globalSubs["org1"] = []string{"u1"}
	p := domain.DefaultPreferences("u1")
	p.EmailOnNewIssue = false
	p.EmailWatchNewIssuesGlobal = true
	p.InAppEnabled = false
	f.prefs["u1"] = p
	f.emails["u1"] = "u1@example.com"

	m := &fakeMailer{}
	e := newTestEngine(t, m)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewIssue, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := m.sentTo(); len(got) != 1 || got[0] != "u1@example.com" {
		t.Fatalf("OR-gating must authorize the email, sent to %v", got)
	}
	if len(f.inserted) != 0 {
		t.Fatalf("in-app master switch off, expected no rows, got %d", len(f.inserted))
	}
}

func TestNotify_MasterSwitchOverridesToggle(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.issueWatchers["i1"] = []string{"u1"}
	p := domain.DefaultPreferences("u1")
	p.InAppEnabled = false // toggle stays true, master wins
	f.prefs["u1"] = p

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewComment, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(f.inserted) != 0 {
		t.Fatalf("master switch off must suppress delivery, got %d rows", len(f.inserted))
	}
}

func TestNotify_AutoSubscribeIdempotence(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.machineWatchers["m1"] = []domain.MachineWatcher{
		{MachineID: "m1", UserID: "u1", Mode: domain.WatchModeSubscribe},
	}

	e := newTestEngine(t, nil)
	event := domain.Event{
		Type: domain.EventNewIssue, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	}
	for range 2 {
		if err := e.Notify(context.Background(), f, event); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	set := f.subscribedWatchers["i1"]
	if len(set) != 1 || !set["u1"] {
		t.Fatalf("expected exactly one watcher row for (i1, u1), got %v", set)
	}
}

func TestNotify_AutoSubscribeSurvivesActorExclusion(t *testing.T) {
	// The reporter is the machine's only subscribe-mode watcher. Actor
	// exclusion empties the recipient set, but the promotion to issue
	// watcher still happens so they follow their own report.
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.machineWatchers["m1"] = []domain.MachineWatcher{
		{MachineID: "m1", UserID: "u1", Mode: domain.WatchModeSubscribe},
	}

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewIssue, ResourceID: "i1", ResourceType: domain.ResourceIssue,
		ActorID: "u1", IncludeActor: false,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	set := f.subscribedWatchers["i1"]
	if len(set) != 1 || !set["u1"] {
		t.Fatalf("expected watcher row (i1, u1) despite actor exclusion, got %v", set)
	}
	if len(f.inserted) != 0 {
		t.Fatalf("actor excluded, no notifications expected, got %v", f.notifiedUsers())
	}
	if f.prefQueries != 0 || f.emailQueries != 0 {
		t.Fatalf("no queries expected past recipient sourcing, got prefs=%d emails=%d",
			f.prefQueries, f.emailQueries)
	}
}

func TestNotify_NoAutoSubscribeForMachineScopedEvent(t *testing.T) {
	// new_issue fired against a machine before the issue row exists: the
	// side effect is skipped because there is no issue to subscribe to.
	f := newFakeStore()
	f.machines["m1"] = store.MachineRef{ID: "m1", OrgID: "org1", Name: "Medieval Madness"}
	f.machineWatchers["m1"] = []domain.MachineWatcher{
		{MachineID: "m1", UserID: "u1", Mode: domain.WatchModeSubscribe},
	}

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewIssue, ResourceID: "m1", ResourceType: domain.ResourceMachine,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(f.subscribedWatchers) != 0 {
		t.Fatalf("no auto-subscribe expected, got %v", f.subscribedWatchers)
	}
	if got := f.notifiedUsers(); len(got) != 1 || got[0] != "u1" {
		t.Fatalf("watcher still gets the notification, got %v", got)
	}
}

func TestNotify_EmailFailureIsolation(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.issueWatchers["i1"] = []string{"u1", "u2", "u3"}
	for _, id := range []string{"u1", "u2", "u3"} {
		f.emails[id] = id + "@example.com"
	}

	m := &fakeMailer{failFor: map[string]bool{"u2@example.com": true}}
	e := newTestEngine(t, m)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewComment, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("engine must not fail on an email rejection: %v", err)
	}

	got := m.sentTo()
	if len(got) != 2 || got[0] != "u1@example.com" || got[1] != "u3@example.com" {
		t.Fatalf("siblings must still be sent, got %v", got)
	}
	if got := f.notifiedUsers(); len(got) != 3 {
		t.Fatalf("all three in-app rows expected, got %v", got)
	}
}

func TestNotify_EmptySetShortCircuit(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventIssueStatusChanged, ResourceID: "i1", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if f.prefQueries != 0 || f.emailQueries != 0 {
		t.Fatalf("no queries expected past recipient sourcing, got prefs=%d emails=%d",
			f.prefQueries, f.emailQueries)
	}
	if len(f.inserted) != 0 || len(f.subscribedWatchers) != 0 {
		t.Fatal("no writes expected for an empty recipient set")
	}
}

func TestNotify_ConcreteFanOutScenario(t *testing.T) {
	// Machine M has watchers (userA, subscribe) and (userB, watch); userC
	// is a global subscriber; the actor is anonymous.
	f := newFakeStore()
	seedIssue(f, "I", "org1", "M")
	f.machineWatchers["M"] = []domain.MachineWatcher{
		{MachineID: "M", UserID: "userA", Mode: domain.WatchModeSubscribe},
		{MachineID: "M", UserID: "userB", Mode: domain.WatchModeWatch},
	}
	f.globalSubs["org1"] = []string{"userC"}
	pc := domain.DefaultPreferences("userC")
	pc.InAppWatchNewIssuesGlobal = true
	f.prefs["userC"] = pc

	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), f, domain.Event{
		Type: domain.EventNewIssue, ResourceID: "I", ResourceType: domain.ResourceIssue,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	want := []string{"userA", "userB", "userC"}
	got := f.notifiedUsers()
	if len(got) != 3 {
		t.Fatalf("recipient set must be %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recipient set must be %v, got %v", want, got)
		}
	}

	set := f.subscribedWatchers["I"]
	if len(set) != 1 || !set["userA"] {
		t.Fatalf("only userA auto-subscribes, got %v", set)
	}
}

func TestNotify_ContextFilledFromResource(t *testing.T) {
	f := newFakeStore()
	seedIssue(f, "i1", "org1", "m1")
	f.issueWatchers["i1"] = []string{"u1"}
	f.emails["u1"] = "u1@example.com"

	m := &fakeMailer{}
	e := newTestEngine(t, m)

	// Caller supplies a title; machine name and issue number resolve from
	// the store.
	event := domain.Event{
		Type: domain.EventNewComment, ResourceID: "i1", ResourceType: domain.ResourceIssue,
		Context: domain.EventContext{IssueTitle: "Caller title", CommentText: "hi"},
	}
	if err := e.Notify(context.Background(), f, event); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := m.sentTo(); len(got) != 1 {
		t.Fatalf("expected one email, got %v", got)
	}

	// The issue number resolves from the store and renders through the
	// domain formatter, same as the API surface.
	m.mu.Lock()
	subject := m.subjects[0]
	m.mu.Unlock()
	want := fmt.Sprintf("New comment on issue %s: Caller title", domain.FormatIssueNumber(7))
	if subject != want {
		t.Fatalf("subject = %q, want %q", subject, want)
	}
}

func TestNotify_InvalidEvent(t *testing.T) {
	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), newFakeStore(), domain.Event{
		Type: domain.EventNewComment, ResourceID: "m1", ResourceType: domain.ResourceMachine,
	})
	if err == nil {
		t.Fatal("issue-scoped event against a machine must be rejected")
	}
}

func TestNotify_ResourceLookupFailurePropagates(t *testing.T) {
	e := newTestEngine(t, nil)
	err := e.Notify(context.Background(), newFakeStore(), domain.Event{
		Type: domain.EventNewComment, ResourceID: "missing", ResourceType: domain.ResourceIssue,
	})
	if err == nil {
		t.Fatal("missing resource must fail the call")
	}
}
