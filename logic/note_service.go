package logic

import (
	"context"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_note_service.go -package mocks fedi_engine/logic INoteService

// PreparedNote is a remote note with all its references resolved, ready to be stored.
type PreparedNote struct {
	Note *dal.Note
	Poll *dal.Poll
}

// INoteService stores remote notes. Network work happens in PrepareNote; SaveNoteOnce only touches the store.
type INoteService interface {
	FetchNote(uri string) (*dal.Note, error)
	PrepareNote(ctx context.Context, obj dto.Object, author *dal.Actor, rctx *ResolutionContext) (*PreparedNote, error)
	PrepareRenote(author *dal.Actor, uri string, target *dal.Note, audience *Audience, published *time.Time) *PreparedNote
	SaveNoteOnce(ctx context.Context, prepared *PreparedNote) (note *dal.Note, isNew bool, err error)
	ResolveNote(ctx context.Context, ref dto.Ref, sentFrom string, rctx *ResolutionContext) (*dal.Note, error)
	RefreshPoll(note *dal.Note, obj dto.Object) (bool, error)
}

type noteService struct {
	logger    shared.ILogger
	repo      dal.IRepo
	resolver  IResolver
	persons   IPersonService
	locks     ILockManager
	clock     shared.IClock
	idb       shared.IdBuilder
	sanitizer *bluemonday.Policy
}

func NewNoteService(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	resolver IResolver,
	persons IPersonService,
	locks ILockManager,
	clock shared.IClock,
) INoteService {
	return &noteService{
		logger:    logger,
		repo:      repo,
		resolver:  resolver,
		persons:   persons,
		locks:     locks,
		clock:     clock,
		idb:       shared.IdBuilder{Host: cfg.Host},
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// FetchNote finds a note we already have, local or remote, by its URI.
func (ns *noteService) FetchNote(uri string) (*dal.Note, error) {
	if ref, ok := ns.idb.ParseLocal(uri); ok {
		if ref.Type != shared.LocalNotes || ref.Rest != "" {
			return nil, nil
		}
		note, err := ns.repo.GetNoteById(ref.Id)
		if err != nil || note == nil || note.Uri != "" {
			return nil, err
		}
		return note, nil
	}
	return ns.repo.GetNoteByUri(uri)
}

func (ns *noteService) PrepareNote(
	ctx context.Context,
	obj dto.Object,
	author *dal.Actor,
	rctx *ResolutionContext,
) (*PreparedNote, error) {

	if !dto.IsPost(obj) {
		return nil, fmt.Errorf("%w: %s is %s, not a post", shared.ErrUnexpectedType, obj.Id(), obj.Type())
	}
	uri := obj.Id()
	if uri == "" {
		return nil, fmt.Errorf("%w: note has no id", shared.ErrMalformedActivity)
	}
	if shared.HostOf(uri) != shared.HostOf(author.Uri) {
		return nil, fmt.Errorf("%w: note %s claimed by %s", shared.ErrInvalidActor, uri, author.Uri)
	}

	var post dto.Note
	if err := obj.Decode(&post); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedActivity, uri, err)
	}
	if post.AttributedTo != author.Uri {
		return nil, fmt.Errorf("%w: note %s is attributed to %s", shared.ErrInvalidActor, uri, post.AttributedTo)
	}

	audience, err := ParseAudience(ns.repo, ns.idb, author, post.To, post.Cc)
	if err != nil {
		return nil, err
	}

	note := &dal.Note{
		Id:             uuid.NewString(),
		Uri:            uri,
		Url:            post.Url,
		AuthorId:       author.Id,
		Content:        ns.sanitizer.Sanitize(post.Content),
		Visibility:     audience.Visibility,
		VisibleUserIds: audience.VisibleUserIds,
		MentionIds:     audience.MentionedIds,
		CreatedAt:      ns.clock.Now(),
	}
	if post.Summary != nil {
		note.Cw = ns.sanitizer.Sanitize(*post.Summary)
	}
	if published, err := time.Parse(time.RFC3339, post.Published); err == nil {
		note.CreatedAt = published
	}
	if err = ns.addMentions(note, post.Tag); err != nil {
		return nil, err
	}

	// Without its parent, a reply makes no sense
	if post.InReplyTo != nil {
		reply, err := ns.ResolveNote(ctx, dto.UriRef(*post.InReplyTo), author.Host, rctx)
		if err != nil {
			ns.logger.Warnf("Failed to resolve reply target %s of %s: %v", *post.InReplyTo, uri, err)
			return nil, err
		}
		note.ReplyId = reply.Id
		note.ReplyUserId = reply.AuthorId
	}

	if quoteUrl := dto.ExtractQuoteUrl(obj); quoteUrl != "" {
		quote, err := ns.ResolveNote(ctx, dto.UriRef(quoteUrl), author.Host, rctx)
		if err != nil {
			if !isPermanentFailure(err) {
				return nil, err
			}
			ns.logger.Infof("Ignoring quote %s of %s: %v", quoteUrl, uri, err)
		} else {
			note.QuoteId = quote.Id
		}
	}

	res := PreparedNote{Note: note}
	if dto.IsQuestion(obj) {
		res.Poll = makePoll(note.Id, &post)
		note.HasPoll = res.Poll != nil
	}
	return &res, nil
}

// Mention tags of users we know; unknown users are not fetched.
func (ns *noteService) addMentions(note *dal.Note, tags *[]dto.Tag) error {
	if tags == nil {
		return nil
	}
	for _, tag := range *tags {
		if tag.Type != "Mention" || tag.Href == "" {
			continue
		}
		user, err := ns.persons.FetchPerson(tag.Href)
		if err != nil {
			return err
		}
		if user != nil {
			note.MentionIds = appendUnique(note.MentionIds, user.Id)
		}
	}
	return nil
}

func makePoll(noteId string, post *dto.Note) *dal.Poll {
	items := post.OneOf
	multiple := false
	if len(items) == 0 {
		items = post.AnyOf
		multiple = true
	}
	if len(items) == 0 {
		return nil
	}
	poll := dal.Poll{NoteId: noteId, Multiple: multiple}
	for _, item := range items {
		poll.Choices = append(poll.Choices, item.Name)
		poll.Votes = append(poll.Votes, item.Replies.TotalItems)
	}
	if endTime, err := time.Parse(time.RFC3339, post.EndTime); err == nil {
		poll.ExpiresAt = &endTime
	}
	return &poll
}

func (ns *noteService) PrepareRenote(
	author *dal.Actor,
	uri string,
	target *dal.Note,
	audience *Audience,
	published *time.Time,
) *PreparedNote {
	note := &dal.Note{
		Id:             uuid.NewString(),
		Uri:            uri,
		AuthorId:       author.Id,
		RenoteId:       target.Id,
		Visibility:     audience.Visibility,
		VisibleUserIds: audience.VisibleUserIds,
		MentionIds:     audience.MentionedIds,
		CreatedAt:      ns.clock.Now(),
	}
	if published != nil {
		note.CreatedAt = *published
	}
	return &PreparedNote{Note: note}
}

// SaveNoteOnce stores the note unless one with the same URI exists. Concurrent callers with the same URI
// are serialized, so exactly one of them creates the note.
func (ns *noteService) SaveNoteOnce(ctx context.Context, prepared *PreparedNote) (*dal.Note, bool, error) {

	type saveResult struct {
		note  *dal.Note
		isNew bool
	}
	res, err := WithLock(ctx, ns.locks, prepared.Note.Uri, func() (saveResult, error) {
		existing, err := ns.repo.GetNoteByUri(prepared.Note.Uri)
		if err != nil || existing != nil {
			return saveResult{existing, false}, err
		}
		isNew, err := ns.repo.AddNote(prepared.Note)
		if err != nil || !isNew {
			return saveResult{nil, false}, err
		}
		if prepared.Poll != nil {
			if err = ns.repo.AddPoll(prepared.Poll); err != nil {
				return saveResult{}, err
			}
		}
		return saveResult{prepared.Note, true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	if res.note == nil {
		// Unique index caught a writer that did not go through the lock
		res.note, err = ns.repo.GetNoteByUri(prepared.Note.Uri)
	}
	return res.note, res.isNew, err
}

// ResolveNote returns the note we have for ref, or fetches and stores it. An embedded object is only
// trusted if it comes from the host that sent it to us; otherwise it is fetched from its origin.
func (ns *noteService) ResolveNote(
	ctx context.Context,
	ref dto.Ref,
	sentFrom string,
	rctx *ResolutionContext,
) (*dal.Note, error) {

	uri := ref.Id()
	if uri == "" {
		return nil, fmt.Errorf("%w: note reference without id", shared.ErrUnresolvableReference)
	}
	if note, err := ns.FetchNote(uri); err != nil || note != nil {
		return note, err
	}
	if ns.idb.IsLocal(uri) {
		return nil, fmt.Errorf("%w: no local note at %s", shared.ErrUnresolvableReference, uri)
	}

	if !ref.IsMaterialized() || shared.HostOf(uri) != shared.NormalizeHost(sentFrom) {
		ref = dto.UriRef(uri)
	}
	obj, err := ns.resolver.Resolve(ctx, ref, rctx)
	if err != nil {
		return nil, err
	}
	authorUri := obj.RefId("attributedTo")
	if authorUri == "" {
		return nil, fmt.Errorf("%w: note %s has no author", shared.ErrMalformedActivity, uri)
	}
	author, err := ns.persons.ResolvePerson(ctx, authorUri, rctx)
	if err != nil {
		return nil, err
	}
	prepared, err := ns.PrepareNote(ctx, obj, author, rctx)
	if err != nil {
		return nil, err
	}
	note, _, err := ns.SaveNoteOnce(ctx, prepared)
	return note, err
}

// RefreshPoll copies vote counts from an updated Question.
func (ns *noteService) RefreshPoll(note *dal.Note, obj dto.Object) (bool, error) {
	if !note.HasPoll {
		return false, nil
	}
	var post dto.Note
	if err := obj.Decode(&post); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrMalformedActivity, err)
	}
	updated := makePoll(note.Id, &post)
	if updated == nil {
		return false, nil
	}
	poll, err := ns.repo.GetPoll(note.Id)
	if err != nil || poll == nil {
		return false, err
	}
	if len(updated.Votes) != len(poll.Choices) {
		return false, fmt.Errorf("%w: poll %s changed its choices", shared.ErrMalformedActivity, note.Uri)
	}
	return true, ns.repo.UpdatePollVotes(note.Id, updated.Votes)
}

// Errors that will not go away by trying again later.
func isPermanentFailure(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.IsRetryable()
	}
	return shared.IsMalformedInput(err) || errors.Is(err, shared.ErrFederationBlocked)
}
