package logic

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"github.com/google/uuid"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_renderer.go -package mocks fedi_engine/logic IRenderer

var apContext = []string{
	shared.ActivityStreamsNs,
	"https://w3id.org/security/v1",
}

// IRenderer turns stored entities into ActivityStreams objects.
type IRenderer interface {
	ActorUri(actor *dal.Actor) string
	RenderPerson(actor *dal.Actor) (*dto.UserInfo, error)
	RenderNote(note *dal.Note) (*dto.Note, error)
	RenderCreate(note *dal.Note) (*dto.ActivityOut, error)
	RenderQuestion(note *dal.Note, poll *dal.Poll) (*dto.Note, error)
	RenderLike(reaction *dal.Reaction) (*dto.ActivityOut, error)
	RenderFollow(follower, followee *dal.Actor, requestId string) *dto.ActivityOut
	RenderAccept(followee *dal.Actor, follow dto.Object) *dto.ActivityOut
	RenderReject(followee *dal.Actor, follow dto.Object) *dto.ActivityOut
}

type renderer struct {
	cfg      *shared.Config
	repo     dal.IRepo
	keyStore IKeyStore
	idb      shared.IdBuilder
}

func NewRenderer(cfg *shared.Config, repo dal.IRepo, keyStore IKeyStore) IRenderer {
	return &renderer{
		cfg:      cfg,
		repo:     repo,
		keyStore: keyStore,
		idb:      shared.IdBuilder{Host: cfg.Host},
	}
}

func (r *renderer) ActorUri(actor *dal.Actor) string {
	if actor.Uri != "" {
		return actor.Uri
	}
	return r.idb.UserUrl(actor.Id)
}

func (r *renderer) noteUri(note *dal.Note) string {
	if note.Uri != "" {
		return note.Uri
	}
	return r.idb.NoteUrl(note.Id)
}

func (r *renderer) followersUrl(actor *dal.Actor) string {
	if actor.FollowersUrl != "" {
		return actor.FollowersUrl
	}
	return r.idb.UserFollowers(actor.Id)
}

func (r *renderer) RenderPerson(actor *dal.Actor) (*dto.UserInfo, error) {

	if !actor.IsLocal() {
		return nil, fmt.Errorf("not a local actor: %s", actor.Uri)
	}
	userUrl := r.ActorUri(actor)

	resp := dto.UserInfo{
		Context:           apContext,
		Id:                userUrl,
		Type:              dto.TypePerson,
		PreferredUserName: actor.Username,
		Name:              actor.Name,
		Url:               userUrl,
		ManuallyApproves:  actor.IsLocked,
		Inbox:             r.idb.UserInbox(actor.Id),
		Outbox:            r.idb.UserOutbox(actor.Id),
		Followers:         r.idb.UserFollowers(actor.Id),
		Following:         r.idb.UserFollowing(actor.Id),
		Featured:          r.idb.UserFeatured(actor.Id),
		Endpoints:         dto.UserEndpoints{SharedInbox: r.idb.SharedInbox()},
		PublicKey: dto.PublicKey{
			Id:           r.idb.UserKeyId(actor.Id),
			Owner:        userUrl,
			PublicKeyPem: actor.PublicKeyPem,
		},
	}
	if sa := r.cfg.SystemActor; sa != nil && sa.User == actor.Id {
		resp.Type = "Application"
		resp.Published = sa.Published.Format(time.RFC3339)
	}

	// The newer key is announced next to the legacy one
	key, err := r.keyStore.GetActorKey(actor.Id, SigLevelEd25519)
	if err != nil {
		return nil, err
	}
	if key.Level == SigLevelEd25519 {
		pubPem, err := ed25519PubPem(key.PrivKey.(ed25519.PrivateKey))
		if err != nil {
			return nil, err
		}
		resp.AdditionalKeys = []dto.PublicKey{{Id: key.KeyId, Owner: userUrl, PublicKeyPem: pubPem}}
	}
	return &resp, nil
}

func ed25519PubPem(privKey ed25519.PrivateKey) (string, error) {
	pubRaw, err := x509.MarshalPKIXPublicKey(privKey.Public())
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubRaw})), nil
}

func (r *renderer) audience(note *dal.Note, author *dal.Actor) (to, cc []string, err error) {
	followers := r.followersUrl(author)
	switch note.Visibility {
	case dal.VisibilityPublic:
		to, cc = []string{shared.ActivityPublic}, []string{followers}
	case dal.VisibilityHome:
		to, cc = []string{followers}, []string{shared.ActivityPublic}
	case dal.VisibilityFollowers:
		to = []string{followers}
	}
	// Mentioned and explicitly addressed users are always in the audience
	for _, userId := range append(append([]string{}, note.VisibleUserIds...), note.MentionIds...) {
		var user *dal.Actor
		if user, err = r.repo.GetActorById(userId); err != nil {
			return
		}
		if user == nil {
			continue
		}
		uri := r.ActorUri(user)
		if note.Visibility == dal.VisibilitySpecified {
			to = appendUnique(to, uri)
		} else {
			cc = appendUnique(cc, uri)
		}
	}
	return
}

func appendUnique(list []string, val string) []string {
	for _, x := range list {
		if x == val {
			return list
		}
	}
	return append(list, val)
}

func (r *renderer) RenderNote(note *dal.Note) (*dto.Note, error) {

	author, err := r.repo.GetActorById(note.AuthorId)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("author %s of note %s not found", note.AuthorId, note.Id)
	}
	to, cc, err := r.audience(note, author)
	if err != nil {
		return nil, err
	}

	res := dto.Note{
		Context:      shared.ActivityStreamsNs,
		Id:           r.noteUri(note),
		Type:         dto.TypeNote,
		Url:          note.Url,
		Published:    note.CreatedAt.UTC().Format(time.RFC3339),
		AttributedTo: r.ActorUri(author),
		To:           to,
		Cc:           cc,
		Content:      note.Content,
	}
	if res.Url == "" {
		res.Url = res.Id
	}
	if note.Cw != "" {
		cw := note.Cw
		res.Summary = &cw
		res.Sensitive = true
	}
	if note.ReplyId != "" {
		if reply, err := r.repo.GetNoteById(note.ReplyId); err != nil {
			return nil, err
		} else if reply != nil {
			replyUri := r.noteUri(reply)
			res.InReplyTo = &replyUri
		}
	}
	if note.QuoteId != "" {
		if quote, err := r.repo.GetNoteById(note.QuoteId); err != nil {
			return nil, err
		} else if quote != nil {
			res.QuoteUrl = r.noteUri(quote)
			res.MisskeyQuote = res.QuoteUrl
		}
	}
	return &res, nil
}

func (r *renderer) RenderCreate(note *dal.Note) (*dto.ActivityOut, error) {
	obj, err := r.RenderNote(note)
	if err != nil {
		return nil, err
	}
	obj.Context = nil
	return &dto.ActivityOut{
		Context: shared.ActivityStreamsNs,
		Id:      r.idb.NoteActivity(note.Id),
		Type:    dto.TypeCreate,
		Actor:   obj.AttributedTo,
		To:      &obj.To,
		Cc:      &obj.Cc,
		Object:  obj,
	}, nil
}

func (r *renderer) RenderQuestion(note *dal.Note, poll *dal.Poll) (*dto.Note, error) {
	res, err := r.RenderNote(note)
	if err != nil {
		return nil, err
	}
	res.Type = dto.TypeQuestion
	res.Id = r.idb.QuestionUrl(note.Id)
	items := make([]dto.PollItem, len(poll.Choices))
	for i, choice := range poll.Choices {
		items[i] = dto.PollItem{Type: dto.TypeNote, Name: choice}
		items[i].Replies = dto.PollReplyCnt{Type: dto.TypeCollection}
		if i < len(poll.Votes) {
			items[i].Replies.TotalItems = poll.Votes[i]
		}
	}
	if poll.Multiple {
		res.AnyOf = items
	} else {
		res.OneOf = items
	}
	if poll.ExpiresAt != nil {
		res.EndTime = poll.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return res, nil
}

func (r *renderer) RenderLike(reaction *dal.Reaction) (*dto.ActivityOut, error) {
	user, err := r.repo.GetActorById(reaction.UserId)
	if err != nil {
		return nil, err
	}
	note, err := r.repo.GetNoteById(reaction.NoteId)
	if err != nil {
		return nil, err
	}
	if user == nil || note == nil {
		return nil, fmt.Errorf("reaction %s refers to missing user or note", reaction.Id)
	}
	return &dto.ActivityOut{
		Context: shared.ActivityStreamsNs,
		Id:      r.idb.LikeUrl(reaction.Id),
		Type:    dto.TypeLike,
		Actor:   r.ActorUri(user),
		Object:  r.noteUri(note),
	}, nil
}

func (r *renderer) RenderFollow(follower, followee *dal.Actor, requestId string) *dto.ActivityOut {
	id := requestId
	if id == "" {
		id = r.idb.FollowUrl(follower.Id, followee.Id)
	}
	return &dto.ActivityOut{
		Context: shared.ActivityStreamsNs,
		Id:      id,
		Type:    dto.TypeFollow,
		Actor:   r.ActorUri(follower),
		Object:  r.ActorUri(followee),
	}
}

func (r *renderer) RenderAccept(followee *dal.Actor, follow dto.Object) *dto.ActivityOut {
	return r.renderResponse(dto.TypeAccept, followee, follow)
}

func (r *renderer) RenderReject(followee *dal.Actor, follow dto.Object) *dto.ActivityOut {
	return r.renderResponse(dto.TypeReject, followee, follow)
}

func (r *renderer) renderResponse(typ string, followee *dal.Actor, follow dto.Object) *dto.ActivityOut {
	// Echo back only what the remote needs to match its request
	inner := dto.ActivityOut{
		Id:     follow.Id(),
		Type:   dto.TypeFollow,
		Actor:  follow.RefId("actor"),
		Object: follow.RefId("object"),
	}
	return &dto.ActivityOut{
		Context: shared.ActivityStreamsNs,
		Id:      r.idb.ActivityUrl(uuid.NewString()),
		Type:    typ,
		Actor:   r.ActorUri(followee),
		Object:  inner,
	}
}
