package logic_test

import (
	"fedi_engine/dal"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"fedi_engine/test"
	"fedi_engine/test/fakes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func setupAudienceTest() (*fakes.MemRepo, shared.IdBuilder, *dal.Actor) {
	repo := fakes.NewMemRepo()
	bob := test.MakeRemoteActor(test.RemoteHost, "bob")
	repo.AddActor(bob, nil)
	repo.AddActor(test.MakeRemoteActor(test.ThirdHost, "eve"), nil)
	repo.AddActor(test.MakeLocalActor("alice"), nil)
	return repo, shared.IdBuilder{Host: test.LocalHost}, bob
}

func TestParseAudience_Visibility(t *testing.T) {
	repo, idb, bob := setupAudienceTest()
	public := shared.ActivityPublic

	cases := []struct {
		name     string
		to, cc   []string
		expected string
	}{
		{"public", []string{public}, []string{bob.FollowersUrl}, dal.VisibilityPublic},
		{"public short form", []string{"as:Public"}, nil, dal.VisibilityPublic},
		{"unlisted", []string{bob.FollowersUrl}, []string{public}, dal.VisibilityHome},
		{"followers", []string{bob.FollowersUrl}, nil, dal.VisibilityFollowers},
		{"followers by convention", []string{bob.Uri + "/followers"}, nil, dal.VisibilityFollowers},
		{"direct", []string{"https://third.example/users/eve"}, nil, dal.VisibilitySpecified},
		{"nobody", nil, nil, dal.VisibilitySpecified},
	}
	for _, c := range cases {
		audience, err := logic.ParseAudience(repo, idb, bob, c.to, c.cc)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.expected, audience.Visibility, c.name)
	}
}

func TestParseAudience_Addressees(t *testing.T) {
	repo, idb, bob := setupAudienceTest()

	to := []string{
		test.LocalActorUri("alice"),
		"https://third.example/users/eve",
		"https://unknown.example/users/zed",
		test.LocalActorUri("nobody"),
		"https://local.example/notes/1",
	}
	audience, err := logic.ParseAudience(repo, idb, bob, to, []string{"https://third.example/users/eve"})
	require.NoError(t, err)
	assert.Equal(t, dal.VisibilitySpecified, audience.Visibility)
	assert.Equal(t, []string{"alice", "third.example-eve"}, audience.MentionedIds)
	assert.Equal(t, audience.MentionedIds, audience.VisibleUserIds)

	audience, err = logic.ParseAudience(repo, idb, bob, []string{shared.ActivityPublic}, []string{test.LocalActorUri("alice")})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, audience.MentionedIds)
	assert.Empty(t, audience.VisibleUserIds)
}

func TestIsVisibleFor(t *testing.T) {
	repo, _, bob := setupAudienceTest()
	require.NoError(t, repo.AddFollowing(&dal.Following{FollowerId: bob.Id, FolloweeId: "alice"}))
	eve := "third.example-eve"

	cases := []struct {
		name    string
		note    dal.Note
		actorId string
		visible bool
	}{
		{"public", dal.Note{AuthorId: "alice", Visibility: dal.VisibilityPublic}, eve, true},
		{"home", dal.Note{AuthorId: "alice", Visibility: dal.VisibilityHome}, eve, true},
		{"followers to follower", dal.Note{AuthorId: "alice", Visibility: dal.VisibilityFollowers}, bob.Id, true},
		{"followers to stranger", dal.Note{AuthorId: "alice", Visibility: dal.VisibilityFollowers}, eve, false},
		{"followers to mentioned", dal.Note{AuthorId: "alice", Visibility: dal.VisibilityFollowers, MentionIds: []string{eve}}, eve, true},
		{"specified to addressee", dal.Note{AuthorId: "alice", Visibility: dal.VisibilitySpecified, VisibleUserIds: []string{eve}}, eve, true},
		{"specified to follower", dal.Note{AuthorId: "alice", Visibility: dal.VisibilitySpecified}, bob.Id, false},
		{"own note", dal.Note{AuthorId: eve, Visibility: dal.VisibilitySpecified}, eve, true},
	}
	for _, c := range cases {
		visible, err := logic.IsVisibleFor(repo, &c.note, c.actorId)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.visible, visible, c.name)
	}
}
