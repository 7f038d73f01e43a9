package logic

import (
	"bytes"
	"context"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"net/url"
	"strings"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_resolver.go -package mocks fedi_engine/logic IResolver

// ResolutionContext lives for one top-level operation. It remembers every URI dereferenced so far.
type ResolutionContext struct {
	// Local actor that signs fetches; system actor is used when empty and signed fetch is on
	SignerId string
	visited  map[string]struct{}
}

func NewResolutionContext(signerId string) *ResolutionContext {
	return &ResolutionContext{SignerId: signerId, visited: make(map[string]struct{})}
}

func (rctx *ResolutionContext) HasVisited(uri string) bool {
	_, ok := rctx.visited[uri]
	return ok
}

func (rctx *ResolutionContext) VisitedCount() int {
	return len(rctx.visited)
}

type IResolver interface {
	Resolve(ctx context.Context, ref dto.Ref, rctx *ResolutionContext) (dto.Object, error)
	ResolveCollection(ctx context.Context, ref dto.Ref, rctx *ResolutionContext) (dto.Object, error)
}

type resolver struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	renderer IRenderer
	sender   IActivitySender
	policy   IFederationPolicy
	idb      shared.IdBuilder
}

func NewResolver(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	renderer IRenderer,
	sender IActivitySender,
	policy IFederationPolicy,
) IResolver {
	return &resolver{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		renderer: renderer,
		sender:   sender,
		policy:   policy,
		idb:      shared.IdBuilder{Host: cfg.Host},
	}
}

func (res *resolver) ResolveCollection(ctx context.Context, ref dto.Ref, rctx *ResolutionContext) (dto.Object, error) {
	obj, err := res.Resolve(ctx, ref, rctx)
	if err != nil {
		return nil, err
	}
	if !dto.IsCollectionOrOrderedCollection(obj) {
		return nil, fmt.Errorf("%w: %s is %s, not a collection", shared.ErrUnexpectedType, obj.Id(), obj.Type())
	}
	return obj, nil
}

func (res *resolver) Resolve(ctx context.Context, ref dto.Ref, rctx *ResolutionContext) (dto.Object, error) {

	if ref.IsMaterialized() {
		return ref.Obj, nil
	}
	uri := ref.Uri
	if uri == "" {
		return nil, fmt.Errorf("%w: empty reference", shared.ErrUnresolvableReference)
	}
	if strings.Contains(uri, "#") {
		return nil, fmt.Errorf("%w: %s has a fragment", shared.ErrUnresolvableReference, uri)
	}
	if rctx.HasVisited(uri) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCyclicReference, uri)
	}
	if rctx.VisitedCount() >= res.cfg.Federation.ResolveRecursionLimit {
		return nil, fmt.Errorf("%w: at %s", shared.ErrRecursionLimit, uri)
	}
	rctx.visited[uri] = struct{}{}

	if localRef, ok := res.idb.ParseLocal(uri); ok {
		return res.resolveLocal(localRef, uri)
	}
	return res.fetch(ctx, uri, rctx)
}

func (res *resolver) resolveLocal(ref *shared.LocalRef, uri string) (dto.Object, error) {

	notFound := func() error {
		return fmt.Errorf("%w: no local %s with id %s", shared.ErrUnresolvableReference, ref.Type, ref.Id)
	}
	if ref.Id == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnrecognizedLocalResource, uri)
	}

	var rendered any
	var err error

	switch {
	case ref.Type == shared.LocalNotes && (ref.Rest == "" || ref.Rest == shared.LocalActivity):
		var note *dal.Note
		if note, err = res.getLocalNote(ref.Id); err != nil {
			return nil, err
		}
		if note == nil {
			return nil, notFound()
		}
		if ref.Rest == shared.LocalActivity {
			rendered, err = res.renderer.RenderCreate(note)
		} else {
			rendered, err = res.renderer.RenderNote(note)
		}

	case ref.Type == shared.LocalUsers && ref.Rest == "":
		var actor *dal.Actor
		if actor, err = res.repo.GetActorById(ref.Id); err != nil {
			return nil, err
		}
		if actor == nil || !actor.IsLocal() {
			return nil, notFound()
		}
		rendered, err = res.renderer.RenderPerson(actor)

	case ref.Type == shared.LocalQuestions && ref.Rest == "":
		var note *dal.Note
		var poll *dal.Poll
		if note, err = res.getLocalNote(ref.Id); err != nil {
			return nil, err
		}
		if note != nil && note.HasPoll {
			if poll, err = res.repo.GetPoll(note.Id); err != nil {
				return nil, err
			}
		}
		if poll == nil {
			return nil, notFound()
		}
		rendered, err = res.renderer.RenderQuestion(note, poll)

	case (ref.Type == shared.LocalLike || ref.Type == shared.LocalLikes) && ref.Rest == "":
		var reaction *dal.Reaction
		if reaction, err = res.repo.GetReactionById(ref.Id); err != nil {
			return nil, err
		}
		if reaction == nil {
			return nil, notFound()
		}
		rendered, err = res.renderer.RenderLike(reaction)

	case ref.Type == shared.LocalFollows && ref.Rest != "" && !strings.Contains(ref.Rest, "/"):
		var follow *dto.ActivityOut
		if follow, err = res.renderLocalFollow(ref.Id, ref.Rest); err != nil {
			return nil, err
		}
		if follow == nil {
			return nil, notFound()
		}
		rendered = follow

	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnrecognizedLocalResource, uri)
	}

	if err != nil {
		return nil, err
	}
	return dto.ToObject(rendered)
}

func (res *resolver) getLocalNote(id string) (*dal.Note, error) {
	note, err := res.repo.GetNoteById(id)
	if err != nil || note == nil || note.Uri != "" {
		return nil, err
	}
	return note, nil
}

// A follow edge or pending request, rendered as the Follow that created it.
func (res *resolver) renderLocalFollow(followerId, followeeId string) (*dto.ActivityOut, error) {
	follower, err := res.repo.GetActorById(followerId)
	if err != nil {
		return nil, err
	}
	followee, err := res.repo.GetActorById(followeeId)
	if err != nil {
		return nil, err
	}
	if follower == nil || followee == nil {
		return nil, nil
	}
	isFollowing, err := res.repo.IsFollowing(followerId, followeeId)
	if err != nil {
		return nil, err
	}
	if !isFollowing {
		req, err := res.repo.GetFollowRequest(followerId, followeeId)
		if err != nil || req == nil {
			return nil, err
		}
	}
	return res.renderer.RenderFollow(follower, followee, ""), nil
}

func (res *resolver) get(ctx context.Context, uri string, rctx *ResolutionContext) (*ApResponse, error) {
	signerId := rctx.SignerId
	if signerId == "" && res.cfg.Federation.SignedFetch && res.cfg.SystemActor != nil {
		signerId = res.cfg.SystemActor.User
	}
	if signerId != "" {
		return res.sender.SignedGet(ctx, signerId, uri)
	}
	return res.sender.Get(ctx, uri)
}

func (res *resolver) fetch(ctx context.Context, uri string, rctx *ResolutionContext) (dto.Object, error) {

	host := shared.HostOf(uri)
	if !res.policy.IsAllowed(host) {
		return nil, fmt.Errorf("%w: %s", shared.ErrFederationBlocked, host)
	}

	resp, err := res.get(ctx, uri, rctx)
	if err != nil {
		return nil, err
	}
	finalUrl := resp.FinalUrl
	if finalUrl == "" {
		finalUrl = uri
	}
	if err = res.checkLanded(finalUrl); err != nil {
		return nil, err
	}

	// Some servers answer with their HTML page even when asked for JSON
	if isHtml(resp) {
		alt := findAlternateLink(resp.Body, finalUrl)
		if alt == "" || shared.HostOf(alt) != shared.HostOf(finalUrl) {
			return nil, fmt.Errorf("%w: %s returned HTML", shared.ErrInvalidActivityPubResponse, uri)
		}
		res.logger.Debugf("Following alternate link of %s: %s", uri, alt)
		if resp, err = res.get(ctx, alt, rctx); err != nil {
			return nil, err
		}
		if finalUrl = resp.FinalUrl; finalUrl == "" {
			finalUrl = alt
		}
		if err = res.checkLanded(finalUrl); err != nil {
			return nil, err
		}
		if isHtml(resp) {
			return nil, fmt.Errorf("%w: %s returned HTML again", shared.ErrInvalidActivityPubResponse, alt)
		}
	}

	obj, err := dto.ParseObject(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidActivityPubResponse, uri, err)
	}
	if !obj.HasAsContext() {
		return nil, fmt.Errorf("%w: %s: no ActivityStreams context", shared.ErrInvalidActivityPubResponse, uri)
	}
	if id := obj.Id(); id != "" && shared.HostOf(id) != shared.HostOf(finalUrl) {
		return nil, fmt.Errorf("%w: %s: id %s does not match origin %s",
			shared.ErrInvalidActivityPubResponse, uri, id, shared.HostOf(finalUrl))
	}
	return obj, nil
}

// Redirects must not carry us to a host we would not have contacted directly.
func (res *resolver) checkLanded(finalUrl string) error {
	if host := shared.HostOf(finalUrl); !res.policy.IsAllowed(host) {
		return fmt.Errorf("%w: %s", shared.ErrFederationBlocked, host)
	}
	return nil
}

func isHtml(resp *ApResponse) bool {
	return strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "text/html")
}

func findAlternateLink(body []byte, baseUrl string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	href, ok := doc.Find(`link[rel="alternate"][type="application/activity+json"]`).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	base, err := url.Parse(baseUrl)
	if err != nil {
		return ""
	}
	hrefUrl, err := base.Parse(href)
	if err != nil {
		return ""
	}
	return hrefUrl.String()
}
