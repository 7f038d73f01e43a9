package logic_test

import (
	"context"
	"encoding/json"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"fedi_engine/test"
	"fedi_engine/test/fakes"
	"fedi_engine/test/mocks"
	"fmt"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"net/http"
	"strings"
	"sync"
	"testing"
)

const blockedHost = "blocked.example"

type inboxHarness struct {
	cfg    *shared.Config
	repo   *fakes.MemRepo
	clock  *fakes.Clock
	sender *mocks.MockIActivitySender
	idb    shared.IdBuilder
	alice  *dal.Actor // local, open
	carol  *dal.Actor // local, locked
	bob    *dal.Actor // remote
	eve    *dal.Actor // remote, other host
	muWeb  sync.Mutex
	web    map[string]dto.Object
}

// serve plays the remote servers: everything published is served as activity+json, the rest is 404.
func (h *inboxHarness) serve(_ context.Context, url string) (*logic.ApResponse, error) {
	h.muWeb.Lock()
	obj, ok := h.web[url]
	h.muWeb.Unlock()
	if !ok {
		return nil, &logic.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found", Url: url}
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", logic.ContentTypeActivity)
	return &logic.ApResponse{StatusCode: http.StatusOK, Header: header, Body: body, FinalUrl: url}, nil
}

func (h *inboxHarness) publish(obj dto.Object) {
	if _, ok := obj["@context"]; !ok {
		obj["@context"] = shared.ActivityStreamsNs
	}
	h.muWeb.Lock()
	h.web[obj.Id()] = obj
	h.muWeb.Unlock()
}

func (h *inboxHarness) addNote(note *dal.Note) *dal.Note {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = test.StartTime
	}
	if _, err := h.repo.AddNote(note); err != nil {
		panic(err)
	}
	return note
}

func (h *inboxHarness) jobsTo(inbox string) []*dal.DeliveryJob {
	var res []*dal.DeliveryJob
	for _, job := range h.repo.JobList() {
		if job.To == inbox {
			res = append(res, job)
		}
	}
	return res
}

func setupInboxTest(t *testing.T) (*gomock.Controller, *inboxHarness, logic.IInbox) {
	ctrl := gomock.NewController(t)

	h := inboxHarness{
		cfg:   test.MakeConfig(),
		repo:  fakes.NewMemRepo(),
		clock: fakes.NewClock(test.StartTime),
		web:   map[string]dto.Object{},
	}
	h.cfg.Federation.BlockedHosts = []string{blockedHost}
	h.idb = shared.IdBuilder{Host: h.cfg.Host}

	h.alice = test.MakeLocalActor("alice")
	h.carol = test.MakeLocalActor("carol")
	h.carol.IsLocked = true
	h.bob = test.MakeRemoteActor(test.RemoteHost, "bob")
	h.eve = test.MakeRemoteActor(test.ThirdHost, "eve")
	for _, actor := range []*dal.Actor{h.alice, h.carol, h.bob, h.eve} {
		h.repo.AddActor(actor, nil)
	}

	mockLogger := mocks.NewMockILogger(ctrl)
	test.StubLogger(mockLogger)
	h.sender = mocks.NewMockIActivitySender(ctrl)
	h.sender.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(h.serve).AnyTimes()

	policy := logic.NewFederationPolicy(h.cfg, mockLogger)
	keyStore := logic.NewKeyStore(h.cfg, h.repo)
	renderer := logic.NewRenderer(h.cfg, h.repo, keyStore)
	resolver := logic.NewResolver(h.cfg, mockLogger, h.repo, renderer, h.sender, policy)
	persons := logic.NewPersonService(h.cfg, mockLogger, h.repo, resolver, h.clock)
	locks := logic.NewMemLockManager(h.cfg)
	notes := logic.NewNoteService(h.cfg, mockLogger, h.repo, resolver, persons, locks, h.clock)
	metrics := logic.NewMetrics(h.cfg)
	messenger := logic.NewMessenger(h.cfg, mockLogger, h.repo, h.clock, nil, metrics)

	sut := logic.NewInbox(h.cfg, mockLogger, h.repo, resolver, persons, notes, locks, renderer, messenger, metrics, h.clock)
	return ctrl, &h, sut
}

func perform(t *testing.T, sut logic.IInbox, actor *dal.Actor, js string) (string, error) {
	t.Helper()
	return sut.PerformActivity(context.Background(), actor, test.Obj(t, js))
}

func mustPerform(t *testing.T, sut logic.IInbox, actor *dal.Actor, js string) string {
	t.Helper()
	outcome, err := perform(t, sut, actor, js)
	require.NoError(t, err, js)
	return outcome
}

func followJs(id, actor, object string) string {
	return fmt.Sprintf(`{"id":%q,"type":"Follow","actor":%q,"object":%q}`, id, actor, object)
}

func undoJs(actor, inner string) string {
	return fmt.Sprintf(`{"id":%q,"type":"Undo","actor":%q,"object":%s}`, actor+"#undo", actor, inner)
}

func TestInbox_FollowThenUndo(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	aliceUri := test.LocalActorUri("alice")
	follow := followJs("https://remote.example/follows/1", h.bob.Uri, aliceUri)

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, follow))
	following, _ := h.repo.IsFollowing(h.bob.Id, "alice")
	assert.True(t, following)

	jobs := h.jobsTo(h.bob.Inbox)
	if assert.Len(t, jobs, 1) {
		assert.Equal(t, "alice", jobs[0].SenderId)
		assert.False(t, jobs[0].IsSharedInbox)
		assert.Contains(t, jobs[0].Content, `"type":"Accept"`)
		assert.Contains(t, jobs[0].Content, "https://remote.example/follows/1")
		assert.Equal(t, logic.MakeDigest([]byte(jobs[0].Content)), jobs[0].Digest)
	}

	// The other side lost our Accept and asks again
	assert.Equal(t, "ok: already following", mustPerform(t, sut, h.bob, follow))
	assert.Len(t, h.jobsTo(h.bob.Inbox), 2)

	assert.Equal(t, "ok: unfollowed", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, follow)))
	following, _ = h.repo.IsFollowing(h.bob.Id, "alice")
	assert.False(t, following)

	assert.Equal(t, "skip: not following", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, follow)))
}

func TestInbox_UndoFollowRemovesWhatExists(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	undo := undoJs(h.bob.Uri, followJs("https://remote.example/follows/9", h.bob.Uri, test.LocalActorUri("alice")))
	expected := []string{"skip: not following", "ok: follow request canceled", "ok: unfollowed"}

	properties := gopter.NewProperties(nil)
	properties.Property("undo leaves neither request nor edge", prop.ForAll(
		func(state int) bool {
			_, _ = h.repo.RemoveFollowing(h.bob.Id, "alice")
			_, _ = h.repo.RemoveFollowRequest(h.bob.Id, "alice")
			switch state {
			case 1:
				_ = h.repo.AddFollowRequest(&dal.FollowRequest{FollowerId: h.bob.Id, FolloweeId: "alice"})
			case 2:
				_ = h.repo.AddFollowing(&dal.Following{FollowerId: h.bob.Id, FolloweeId: "alice"})
			}
			outcome, err := sut.PerformActivity(context.Background(), h.bob, test.Obj(t, undo))
			following, _ := h.repo.IsFollowing(h.bob.Id, "alice")
			req, _ := h.repo.GetFollowRequest(h.bob.Id, "alice")
			return err == nil && outcome == expected[state] && !following && req == nil
		},
		gen.IntRange(0, 2),
	))
	properties.TestingRun(t)
}

func TestInbox_FollowUnknownFollowee(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	outcome := mustPerform(t, sut, h.bob, followJs("https://remote.example/follows/1", h.bob.Uri, test.LocalActorUri("nobody")))
	assert.Equal(t, "skip: followee not found", outcome)
	outcome = mustPerform(t, sut, h.bob, followJs("https://remote.example/follows/2", h.bob.Uri, h.eve.Uri))
	assert.Equal(t, "skip: followee not found", outcome)
	assert.Empty(t, h.repo.JobList())
}

func TestInbox_FollowLockedAccount(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	follow := followJs("https://remote.example/follows/7", h.bob.Uri, test.LocalActorUri("carol"))

	assert.Equal(t, "ok: follow request created", mustPerform(t, sut, h.bob, follow))
	req, _ := h.repo.GetFollowRequest(h.bob.Id, "carol")
	if assert.NotNil(t, req) {
		assert.Equal(t, "https://remote.example/follows/7", req.RequestId)
	}
	assert.Empty(t, h.repo.JobList())

	assert.Equal(t, "skip: follow request exists", mustPerform(t, sut, h.bob, follow))
	assert.Equal(t, "ok: follow request canceled", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, follow)))
	req, _ = h.repo.GetFollowRequest(h.bob.Id, "carol")
	assert.Nil(t, req)
}

func TestInbox_FollowFromBlockedActor(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	_ = h.repo.AddBlocking(&dal.Blocking{BlockerId: "alice", BlockeeId: h.bob.Id})

	outcome := mustPerform(t, sut, h.bob, followJs("https://remote.example/follows/1", h.bob.Uri, test.LocalActorUri("alice")))
	assert.Equal(t, "skip: follower is blocked", outcome)
	following, _ := h.repo.IsFollowing(h.bob.Id, "alice")
	assert.False(t, following)
	jobs := h.jobsTo(h.bob.Inbox)
	if assert.Len(t, jobs, 1) {
		assert.Contains(t, jobs[0].Content, `"type":"Reject"`)
	}
}

func TestInbox_CreateNote(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	create := `{
		"id": "https://remote.example/notes/1/activity",
		"type": "Create",
		"actor": "https://remote.example/users/bob",
		"to": ["https://www.w3.org/ns/activitystreams#Public"],
		"object": {
			"id": "https://remote.example/notes/1",
			"type": "Note",
			"content": "<p>Hello <script>alert(1)</script>world</p>",
			"published": "2024-03-01T10:00:00Z"
		}
	}`

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, create))
	note, _ := h.repo.GetNoteByUri("https://remote.example/notes/1")
	if assert.NotNil(t, note) {
		assert.Equal(t, h.bob.Id, note.AuthorId)
		assert.Equal(t, dal.VisibilityPublic, note.Visibility)
		assert.NotContains(t, note.Content, "script")
		assert.Equal(t, test.ObjectsTime, note.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}

	assert.Equal(t, "skip: note exists", mustPerform(t, sut, h.bob, create))
	assert.Equal(t, 1, h.repo.NoteCount())
}

func TestInbox_CreateNoteConcurrently(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	create := `{
		"id": "https://remote.example/notes/2/activity",
		"type": "Create",
		"actor": "https://remote.example/users/bob",
		"object": {
			"id": "https://remote.example/notes/2",
			"type": "Note",
			"attributedTo": "https://remote.example/users/bob",
			"to": ["https://www.w3.org/ns/activitystreams#Public"],
			"content": "same note, many deliveries"
		}
	}`

	const deliveries = 16
	activities := make([]dto.Object, deliveries)
	for i := range activities {
		activities[i] = test.Obj(t, create)
	}
	outcomes := make([]string, deliveries)
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	for i := range activities {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = sut.PerformActivity(context.Background(), h.bob, activities[i])
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range outcomes {
		assert.NoError(t, errs[i])
		if outcomes[i] == "ok" {
			created++
		} else {
			assert.Equal(t, "skip: note exists", outcomes[i])
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, h.repo.NoteCount())
}

func TestInbox_CreateSpoofed(t *testing.T) {
	_, h, sut := setupInboxTest(t)

	// Note claims to live on another host
	_, err := perform(t, sut, h.bob, `{
		"type": "Create",
		"actor": "https://remote.example/users/bob",
		"object": {"id": "https://third.example/notes/1", "type": "Note", "content": "x"}
	}`)
	assert.ErrorIs(t, err, shared.ErrInvalidActor)
	assert.True(t, shared.IsMalformedInput(err))

	// Note attributed to someone else
	_, err = perform(t, sut, h.bob, `{
		"type": "Create",
		"actor": "https://remote.example/users/bob",
		"object": {
			"id": "https://remote.example/notes/3", "type": "Note", "content": "x",
			"attributedTo": "https://remote.example/users/mallory"
		}
	}`)
	assert.ErrorIs(t, err, shared.ErrInvalidActor)

	// Activity sent on behalf of another actor
	_, err = perform(t, sut, h.bob, followJs("https://third.example/follows/1", h.eve.Uri, test.LocalActorUri("alice")))
	assert.ErrorIs(t, err, shared.ErrInvalidActor)

	assert.Equal(t, 0, h.repo.NoteCount())
	assert.Empty(t, h.repo.Followings)
}

func TestInbox_CreateUnsupportedObject(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	outcome := mustPerform(t, sut, h.bob, `{
		"type": "Create",
		"actor": "https://remote.example/users/bob",
		"object": {"id": "https://remote.example/places/1", "type": "Place"}
	}`)
	assert.Equal(t, "skip: unsupported object type Place", outcome)
}

func TestInbox_UnknownActivity(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	outcome := mustPerform(t, sut, h.bob, `{
		"type": "EmojiReact",
		"actor": "https://remote.example/users/bob",
		"object": "https://local.example/notes/1"
	}`)
	assert.Equal(t, "skip: unknown activity type EmojiReact", outcome)
}

func TestInbox_MalformedActivity(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	_, err := perform(t, sut, h.bob, `{"type":"Follow","actor":"https://remote.example/users/bob"}`)
	assert.ErrorIs(t, err, shared.ErrMalformedActivity)
	_, err = perform(t, sut, h.bob, `{"type":"Like","object":"https://local.example/notes/1"}`)
	assert.ErrorIs(t, err, shared.ErrMalformedActivity)
}

func TestInbox_SuspendedActor(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.bob.IsSuspended = true
	outcome := mustPerform(t, sut, h.bob, followJs("https://remote.example/follows/1", h.bob.Uri, test.LocalActorUri("alice")))
	assert.Equal(t, "skip: actor suspended", outcome)
	assert.Empty(t, h.repo.Followings)
}

func TestInbox_LikeTwice(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "n1", AuthorId: "alice", Visibility: dal.VisibilityPublic})
	like := `{"id":"https://remote.example/likes/1","type":"Like","actor":"https://remote.example/users/bob","object":"https://local.example/notes/n1"}`

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, like))
	assert.Equal(t, "skip: already reacted", mustPerform(t, sut, h.bob, like))
	assert.Len(t, h.repo.Reactions, 1)
	for _, r := range h.repo.Reactions {
		assert.Equal(t, dto.DefaultReaction, r.Reaction)
	}

	assert.Equal(t, "ok: deleted", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, like)))
	assert.Equal(t, "skip: not reacted", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, like)))
}

func TestInbox_LikeVisibility(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "n2", AuthorId: "alice", Visibility: dal.VisibilityFollowers})
	like := `{"type":"Like","actor":"https://remote.example/users/bob","object":"https://local.example/notes/n2","content":"🎉"}`

	assert.Equal(t, "skip: note is not visible to actor", mustPerform(t, sut, h.bob, like))

	_ = h.repo.AddFollowing(&dal.Following{FollowerId: h.bob.Id, FolloweeId: "alice"})
	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, like))
	for _, r := range h.repo.Reactions {
		assert.Equal(t, "🎉", r.Reaction)
	}

	outcome := mustPerform(t, sut, h.bob, `{"type":"Like","actor":"https://remote.example/users/bob","object":"https://local.example/notes/missing"}`)
	assert.Equal(t, "skip: target note not found https://local.example/notes/missing", outcome)
}

func TestInbox_Announce(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "pub", AuthorId: "alice", Visibility: dal.VisibilityPublic})
	h.addNote(&dal.Note{Id: "dm", AuthorId: "alice", Visibility: dal.VisibilitySpecified, VisibleUserIds: []string{h.eve.Id}})

	announceJs := func(id, object string) string {
		return fmt.Sprintf(`{"id":%q,"type":"Announce","actor":%q,"object":%q,
			"to":["https://www.w3.org/ns/activitystreams#Public"],"published":"2024-03-01T11:00:00Z"}`,
			id, h.bob.Uri, object)
	}

	outcome := mustPerform(t, sut, h.bob, announceJs("https://remote.example/boosts/1", "https://local.example/notes/dm"))
	assert.Equal(t, "skip: announce target is not visible to actor", outcome)

	announce := announceJs("https://remote.example/boosts/2", "https://local.example/notes/pub")
	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, announce))
	renote, _ := h.repo.GetNoteByUri("https://remote.example/boosts/2")
	if assert.NotNil(t, renote) {
		assert.Equal(t, "pub", renote.RenoteId)
		assert.Equal(t, h.bob.Id, renote.AuthorId)
		assert.Equal(t, dal.VisibilityPublic, renote.Visibility)
		assert.Equal(t, 11, renote.CreatedAt.Hour())
	}
	assert.Equal(t, "skip: note exists", mustPerform(t, sut, h.bob, announce))

	// Only the booster can take it back
	_, err := perform(t, sut, h.eve, undoJs(h.eve.Uri, announce))
	assert.ErrorIs(t, err, shared.ErrInvalidActor)
	assert.Equal(t, "ok: renote deleted", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, announce)))
	assert.Equal(t, "skip: no such announce", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, announce)))
}

func TestInbox_AnnounceIdFromOtherHost(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "pub", AuthorId: "alice", Visibility: dal.VisibilityPublic})
	announceJs := func(actor string) string {
		return fmt.Sprintf(`{"id":"https://remote.example/boosts/7","type":"Announce","actor":%q,
			"object":"https://local.example/notes/pub","to":["https://www.w3.org/ns/activitystreams#Public"]}`, actor)
	}

	_, err := perform(t, sut, h.eve, announceJs(h.eve.Uri))
	assert.ErrorIs(t, err, shared.ErrInvalidActor)
	renote, _ := h.repo.GetNoteByUri("https://remote.example/boosts/7")
	assert.Nil(t, renote)

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, announceJs(h.bob.Uri)))
	renote, _ = h.repo.GetNoteByUri("https://remote.example/boosts/7")
	if assert.NotNil(t, renote) {
		assert.Equal(t, h.bob.Id, renote.AuthorId)
	}
}

func TestInbox_AnnounceRemoteNote(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.publish(test.Obj(t, `{
		"id": "https://third.example/notes/9",
		"type": "Note",
		"attributedTo": "https://third.example/users/eve",
		"to": "https://www.w3.org/ns/activitystreams#Public",
		"content": "boost me"
	}`))

	outcome := mustPerform(t, sut, h.bob, `{"id":"https://remote.example/boosts/3","type":"Announce",
		"actor":"https://remote.example/users/bob","object":"https://third.example/notes/9",
		"cc":["https://www.w3.org/ns/activitystreams#Public"]}`)
	assert.Equal(t, "ok", outcome)

	target, _ := h.repo.GetNoteByUri("https://third.example/notes/9")
	renote, _ := h.repo.GetNoteByUri("https://remote.example/boosts/3")
	if assert.NotNil(t, target) && assert.NotNil(t, renote) {
		assert.Equal(t, h.eve.Id, target.AuthorId)
		assert.Equal(t, target.Id, renote.RenoteId)
		assert.Equal(t, dal.VisibilityHome, renote.Visibility)
	}

	outcome = mustPerform(t, sut, h.bob, `{"id":"https://remote.example/boosts/4","type":"Announce",
		"actor":"https://remote.example/users/bob","object":"https://blocked.example/notes/1"}`)
	assert.Equal(t, "skip: announce target https://blocked.example/notes/1 is blocked", outcome)

	outcome = mustPerform(t, sut, h.bob, `{"id":"https://remote.example/boosts/5","type":"Announce",
		"actor":"https://remote.example/users/bob","object":"https://third.example/notes/gone"}`)
	assert.Equal(t, "skip: announce target https://third.example/notes/gone returned 404", outcome)
}

func TestInbox_DeleteNote(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "b1", Uri: "https://remote.example/notes/b1", AuthorId: h.bob.Id, Visibility: dal.VisibilityPublic})
	deleteJs := func(actor string) string {
		return fmt.Sprintf(`{"type":"Delete","actor":%q,"object":{"id":"https://remote.example/notes/b1","type":"Tombstone"}}`, actor)
	}

	assert.Equal(t, "skip: actor is not the author of the note", mustPerform(t, sut, h.eve, deleteJs(h.eve.Uri)))
	assert.Equal(t, 1, h.repo.NoteCount())

	assert.Equal(t, "ok: note deleted", mustPerform(t, sut, h.bob, deleteJs(h.bob.Uri)))
	assert.Equal(t, 0, h.repo.NoteCount())
	assert.Equal(t, "skip: note not found", mustPerform(t, sut, h.bob, deleteJs(h.bob.Uri)))
}

func TestInbox_DeleteActor(t *testing.T) {
	_, h, sut := setupInboxTest(t)

	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(
		`{"type":"Delete","actor":%q,"object":{"id":%q,"type":"Tombstone","formerType":"Person"}}`, h.bob.Uri, h.eve.Uri))
	assert.Equal(t, fmt.Sprintf("skip: %s cannot delete actor %s", h.bob.Uri, h.eve.Uri), outcome)

	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Delete","actor":%q,"object":%q}`, h.bob.Uri, h.bob.Uri))
	assert.Equal(t, "ok: actor deleted", outcome)
	stored, _ := h.repo.GetActorById(h.bob.Id)
	assert.True(t, stored.IsDeleted)
	eve, _ := h.repo.GetActorById(h.eve.Id)
	assert.False(t, eve.IsDeleted)
}

func TestInbox_UpdatePerson(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	renamed := *h.bob
	renamed.Name = "Robert"
	h.publish(test.MakeActorDoc(&renamed, "PEM"))

	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Update","actor":%q,"object":{"id":%q,"type":"Person","name":"ignored"}}`,
		h.bob.Uri, h.bob.Uri))
	assert.Equal(t, "ok: Person updated", outcome)
	stored, _ := h.repo.GetActorById(h.bob.Id)
	assert.Equal(t, "Robert", stored.Name)
	assert.Equal(t, "PEM", stored.PublicKeyPem)

	_, err := perform(t, sut, h.bob, fmt.Sprintf(`{"type":"Update","actor":%q,"object":{"id":%q,"type":"Person"}}`,
		h.bob.Uri, h.eve.Uri))
	assert.ErrorIs(t, err, shared.ErrInvalidActor)
}

func TestInbox_UpdateQuestion(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "q1", Uri: "https://remote.example/questions/1", AuthorId: h.bob.Id, HasPoll: true})
	_ = h.repo.AddPoll(&dal.Poll{NoteId: "q1", Choices: []string{"yes", "no"}, Votes: []int{0, 0}})
	question := `{"id":"https://remote.example/questions/1","type":"Question","oneOf":[
		{"type":"Note","name":"yes","replies":{"type":"Collection","totalItems":3}},
		{"type":"Note","name":"no","replies":{"type":"Collection","totalItems":5}}]}`

	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Update","actor":%q,"object":%s}`, h.bob.Uri, question))
	assert.Equal(t, "ok: Question updated", outcome)
	poll, _ := h.repo.GetPoll("q1")
	assert.Equal(t, []int{3, 5}, poll.Votes)

	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Update","actor":%q,"object":%s}`, h.bob.Uri,
		strings.Replace(question, "questions/1", "questions/2", 1)))
	assert.Equal(t, "skip: question not found", outcome)
}

func TestInbox_AddRemoveFeatured(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "b1", Uri: "https://remote.example/notes/b1", AuthorId: h.bob.Id, Visibility: dal.VisibilityPublic})
	h.addNote(&dal.Note{Id: "e1", Uri: "https://third.example/notes/e1", AuthorId: h.eve.Id, Visibility: dal.VisibilityPublic})
	withTarget := func(typ, object, target string) string {
		return fmt.Sprintf(`{"type":%q,"actor":%q,"object":%q,"target":%q}`, typ, h.bob.Uri, object, target)
	}

	_, err := perform(t, sut, h.bob, fmt.Sprintf(`{"type":"Add","actor":%q,"object":"https://remote.example/notes/b1"}`, h.bob.Uri))
	assert.ErrorIs(t, err, shared.ErrUnknownTarget)
	_, err = perform(t, sut, h.bob, withTarget("Add", "https://remote.example/notes/b1", h.bob.Uri+"/collections/tags"))
	assert.ErrorIs(t, err, shared.ErrUnknownTarget)
	_, err = perform(t, sut, h.bob, withTarget("Remove", "https://remote.example/notes/b1", ""))
	assert.ErrorIs(t, err, shared.ErrUnknownTarget)

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, withTarget("Add", "https://remote.example/notes/b1", h.bob.FeaturedUrl)))
	assert.Len(t, h.repo.Pins, 1)
	outcome := mustPerform(t, sut, h.bob, withTarget("Add", "https://third.example/notes/e1", h.bob.FeaturedUrl))
	assert.Equal(t, "skip: only own notes can be pinned", outcome)

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, withTarget("Remove", "https://remote.example/notes/b1", h.bob.FeaturedUrl)))
	assert.Empty(t, h.repo.Pins)
	outcome = mustPerform(t, sut, h.bob, withTarget("Remove", "https://remote.example/notes/b1", h.bob.FeaturedUrl))
	assert.Equal(t, "skip: note not pinned", outcome)
}

func TestInbox_Flag(t *testing.T) {
	_, h, sut := setupInboxTest(t)

	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Flag","actor":%q,
		"content":"<b>spam</b> account",
		"object":["https://local.example/notes/n1","https://local.example/users/nobody","https://local.example/users/alice"]}`,
		h.bob.Uri))
	assert.Equal(t, "ok", outcome)
	if assert.Len(t, h.repo.Reports, 1) {
		report := h.repo.Reports[0]
		assert.Equal(t, "alice", report.TargetUserId)
		assert.Equal(t, h.bob.Id, report.ReporterId)
		assert.True(t, strings.HasPrefix(report.Comment, "spam account\n"), report.Comment)
		assert.Contains(t, report.Comment, "https://local.example/notes/n1")
	}

	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Flag","actor":%q,"object":%q}`, h.bob.Uri, h.eve.Uri))
	assert.Equal(t, "skip: no local user reported", outcome)
}

func TestInbox_FlagLongComment(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	long := strings.Repeat("ä", 3000)
	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Flag","actor":%q,"content":%q,"object":"https://local.example/users/alice"}`,
		h.bob.Uri, long))
	assert.Equal(t, "ok", outcome)
	if assert.Len(t, h.repo.Reports, 1) {
		comment := h.repo.Reports[0].Comment
		assert.LessOrEqual(t, len(comment), 2048)
		assert.True(t, strings.HasSuffix(comment, "ä"))
	}
}

func TestInbox_Read(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.repo.AddMessage(&dal.DirectMessage{Id: "m1", SenderId: "alice", RecipientId: h.bob.Id, Text: "hi"})
	readJs := func(actor, object string) string {
		return fmt.Sprintf(`{"type":"Read","actor":%q,"object":%q}`, actor, object)
	}

	outcome := mustPerform(t, sut, h.eve, readJs(h.eve.Uri, "https://local.example/messages/m1"))
	assert.Equal(t, "skip: actor is not the message recipient", outcome)

	outcome = mustPerform(t, sut, h.bob, readJs(h.bob.Uri, "https://local.example/messages/m1"))
	assert.Equal(t, fmt.Sprintf("ok: mark as read (alice => %s m1)", h.bob.Id), outcome)
	msg, _ := h.repo.GetDirectMessage("m1")
	assert.True(t, msg.IsRead)

	outcome = mustPerform(t, sut, h.bob, readJs(h.bob.Uri, "https://third.example/messages/m1"))
	assert.Equal(t, "skip: Read to foreign host (https://third.example/messages/m1)", outcome)
	outcome = mustPerform(t, sut, h.bob, readJs(h.bob.Uri, "https://local.example/messages/m2"))
	assert.Equal(t, "skip: message not found", outcome)
}

func TestInbox_AcceptReject(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	followUrl := h.idb.FollowUrl("alice", h.bob.Id)
	_ = h.repo.AddFollowRequest(&dal.FollowRequest{RequestId: followUrl, FollowerId: "alice", FolloweeId: h.bob.Id})

	// Our follow by reference: resolved locally from the pending request
	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Accept","actor":%q,"object":%q}`, h.bob.Uri, followUrl))
	assert.Equal(t, "ok", outcome)
	following, _ := h.repo.IsFollowing("alice", h.bob.Id)
	assert.True(t, following)
	req, _ := h.repo.GetFollowRequest("alice", h.bob.Id)
	assert.Nil(t, req)

	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Accept","actor":%q,"object":%q}`, h.bob.Uri, followUrl))
	assert.Equal(t, "skip: no follow request", outcome)

	// Embedded follow; a Reject after the Accept ends the relationship
	embedded := fmt.Sprintf(`{"type":"Follow","actor":%q,"object":%q}`, test.LocalActorUri("alice"), h.bob.Uri)
	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Reject","actor":%q,"object":%s}`, h.bob.Uri, embedded))
	assert.Equal(t, "ok", outcome)
	following, _ = h.repo.IsFollowing("alice", h.bob.Id)
	assert.False(t, following)

	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Reject","actor":%q,"object":%q}`, h.bob.Uri, followUrl))
	assert.Equal(t, "skip: no follow request", outcome)
}

func TestInbox_AcceptOfOtherFollow(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	_ = h.repo.AddFollowRequest(&dal.FollowRequest{FollowerId: "alice", FolloweeId: h.eve.Id})

	embedded := fmt.Sprintf(`{"type":"Follow","actor":%q,"object":%q}`, test.LocalActorUri("alice"), h.eve.Uri)
	_, err := perform(t, sut, h.bob, fmt.Sprintf(`{"type":"Accept","actor":%q,"object":%s}`, h.bob.Uri, embedded))
	assert.ErrorIs(t, err, shared.ErrInvalidActor)

	embedded = fmt.Sprintf(`{"type":"Follow","actor":%q,"object":%q}`, h.eve.Uri, h.bob.Uri)
	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Accept","actor":%q,"object":%s}`, h.bob.Uri, embedded))
	assert.Equal(t, "skip: follower is not a local user", outcome)

	outcome = mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Accept","actor":%q,"object":{"type":"Like","actor":%q,"object":"x"}}`,
		h.bob.Uri, h.bob.Uri))
	assert.Equal(t, "skip: unsupported object type Like", outcome)
}

func TestInbox_UndoAccept(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	_ = h.repo.AddFollowing(&dal.Following{FollowerId: "alice", FolloweeId: h.bob.Id})
	accept := fmt.Sprintf(`{"type":"Accept","actor":%q,"object":{"type":"Follow","actor":%q,"object":%q}}`,
		h.bob.Uri, test.LocalActorUri("alice"), h.bob.Uri)

	assert.Equal(t, "ok: unfollowed", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, accept)))
	assert.Equal(t, "skip: not following", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, accept)))
}

func TestInbox_Block(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	_ = h.repo.AddFollowing(&dal.Following{FollowerId: h.bob.Id, FolloweeId: "alice"})
	_ = h.repo.AddFollowing(&dal.Following{FollowerId: "alice", FolloweeId: h.bob.Id})
	block := fmt.Sprintf(`{"id":"https://remote.example/blocks/1","type":"Block","actor":%q,"object":%q}`,
		h.bob.Uri, test.LocalActorUri("alice"))

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, block))
	blocking, _ := h.repo.IsBlocking(h.bob.Id, "alice")
	assert.True(t, blocking)
	assert.Empty(t, h.repo.Followings)

	assert.Equal(t, "ok", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, block)))
	assert.Equal(t, "skip: not blocking", mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, block)))

	outcome := mustPerform(t, sut, h.bob, fmt.Sprintf(`{"type":"Block","actor":%q,"object":%q}`, h.bob.Uri, h.eve.Uri))
	assert.Equal(t, "skip: blockee not found", outcome)
}

func TestInbox_UndoUnknown(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	outcome := mustPerform(t, sut, h.bob, undoJs(h.bob.Uri, fmt.Sprintf(`{"type":"Read","actor":%q,"object":"https://local.example/messages/1"}`, h.bob.Uri)))
	assert.Equal(t, "skip: unknown object type Read", outcome)
}

func TestInbox_CollectionItemsAreIsolated(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.addNote(&dal.Note{Id: "n1", AuthorId: "alice", Visibility: dal.VisibilityPublic})

	coll := fmt.Sprintf(`{
		"id": "https://remote.example/batches/1",
		"type": "OrderedCollection",
		"orderedItems": [
			{"id":"https://remote.example/likes/1","type":"Like","actor":%[1]q,"object":"https://local.example/notes/n1"},
			{"id":"https://third.example/likes/2","type":"Like","actor":%[1]q,"object":"https://local.example/notes/n1"},
			{"id":"https://remote.example/follows/3","type":"Follow","actor":%[1]q},
			{"id":"https://remote.example/follows/4","type":"Follow","actor":%[1]q,"object":"https://local.example/users/alice"}
		]
	}`, h.bob.Uri)

	assert.Equal(t, "ok: processed 2 of 4 items", mustPerform(t, sut, h.bob, coll))
	assert.Len(t, h.repo.Reactions, 1)
	following, _ := h.repo.IsFollowing(h.bob.Id, "alice")
	assert.True(t, following)
}

func TestInbox_CollectionTooLarge(t *testing.T) {
	_, h, sut := setupInboxTest(t)
	h.cfg.Federation.ResolveRecursionLimit = 3
	items := make([]string, 3)
	for i := range items {
		items[i] = fmt.Sprintf(`"https://remote.example/likes/%d"`, i)
	}
	_, err := perform(t, sut, h.bob, fmt.Sprintf(`{"type":"Collection","items":[%s]}`, strings.Join(items, ",")))
	assert.ErrorIs(t, err, shared.ErrRecursionLimit)
}
