package logic

import (
	"context"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
)

func (ib *inbox) create(ctx context.Context, actor *dal.Actor, act *dto.Create, rctx *ResolutionContext) (string, error) {

	ref := act.Object
	if ref.IsMaterialized() {
		ref = dto.ObjRef(ib.fillCreateObject(act))
	}

	obj, err := ib.resolver.Resolve(ctx, ref, rctx)
	if err != nil {
		return "", err
	}
	if !dto.IsPost(obj) {
		return fmt.Sprintf("skip: unsupported object type %s", obj.Type()), nil
	}
	uri := obj.Id()
	if uri == "" {
		return "", fmt.Errorf("%w: created object has no id", shared.ErrMalformedActivity)
	}

	// Early check keeps repeated deliveries from fetching the whole reply chain again
	existing, err := ib.notes.FetchNote(uri)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "skip: note exists", nil
	}

	prepared, err := ib.notes.PrepareNote(ctx, obj, actor, rctx)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.IsRetryable() {
			return fmt.Sprintf("skip: %d", statusErr.StatusCode), nil
		}
		return "", err
	}
	_, isNew, err := ib.notes.SaveNoteOnce(ctx, prepared)
	if err != nil {
		return "", err
	}
	if !isNew {
		return "skip: note exists", nil
	}
	ib.logger.Infof("Stored note %s from %s", uri, actor.Uri)
	return "ok", nil
}

// fillCreateObject copies the audience between a Create and its embedded object, where one of them
// lacks it, and attributes the object to the sender if it names no author.
func (ib *inbox) fillCreateObject(act *dto.Create) dto.Object {

	src := act.Object.Obj
	obj := make(dto.Object, len(src))
	for k, v := range src {
		obj[k] = v
	}

	for _, key := range []string{"to", "cc"} {
		var fromActivity []string
		if key == "to" {
			fromActivity = act.To
		} else {
			fromActivity = act.Cc
		}
		fromObject := obj.Audience(key)
		if len(fromObject) == 0 && len(fromActivity) > 0 {
			obj[key] = fromActivity
		} else if len(fromActivity) == 0 && len(fromObject) > 0 {
			if key == "to" {
				act.To = fromObject
			} else {
				act.Cc = fromObject
			}
		}
	}
	if obj.RefId("attributedTo") == "" {
		obj["attributedTo"] = act.Actor
	}
	return obj
}

func (ib *inbox) update(ctx context.Context, actor *dal.Actor, act *dto.Update, rctx *ResolutionContext) (string, error) {

	obj, err := ib.resolver.Resolve(ctx, act.Object, rctx)
	if err != nil {
		return "", err
	}

	switch {
	case dto.IsActor(obj):
		if obj.Id() != actor.Uri {
			return "", fmt.Errorf("%w: %s tried to update %s", shared.ErrInvalidActor, actor.Uri, obj.Id())
		}
		// Fresh context: the profile is re-fetched from its origin rather than taken from the activity
		if _, err = ib.persons.UpdatePerson(ctx, actor.Uri, NewResolutionContext("")); err != nil {
			return "", err
		}
		return "ok: Person updated", nil

	case dto.IsQuestion(obj):
		if shared.HostOf(obj.Id()) != shared.HostOf(actor.Uri) {
			return "", fmt.Errorf("%w: %s tried to update %s", shared.ErrInvalidActor, actor.Uri, obj.Id())
		}
		note, err := ib.notes.FetchNote(obj.Id())
		if err != nil {
			return "", err
		}
		if note == nil {
			return "skip: question not found", nil
		}
		if note.AuthorId != actor.Id {
			return "", fmt.Errorf("%w: %s is not the author of %s", shared.ErrInvalidActor, actor.Uri, obj.Id())
		}
		if _, err = ib.notes.RefreshPoll(note, obj); err != nil {
			return "", err
		}
		return "ok: Question updated", nil
	}

	return fmt.Sprintf("skip: unknown type %s", obj.Type()), nil
}

func (ib *inbox) delete(ctx context.Context, actor *dal.Actor, act *dto.Delete) (string, error) {

	uri := act.Object.Id()
	if uri == "" {
		return "", fmt.Errorf("%w: Delete without object id", shared.ErrMalformedActivity)
	}

	// Whatever is deleted is usually gone already, so its type is guessed rather than fetched
	formerType := ""
	if act.Object.IsMaterialized() {
		if dto.IsTombstone(act.Object.Obj) {
			formerType = act.Object.Obj.Str("formerType")
		} else {
			formerType = act.Object.Obj.Type()
		}
	}
	if formerType == "" && uri == actor.Uri {
		formerType = dto.TypePerson
	}
	if formerType == "" {
		formerType = dto.TypeNote
	}

	switch {
	case dto.IsPostType(formerType):
		return ib.deleteNote(ctx, actor, uri)
	case dto.IsActorType(formerType):
		return ib.deleteActor(actor, uri)
	}
	return fmt.Sprintf("skip: unknown type %s", formerType), nil
}

func (ib *inbox) deleteActor(actor *dal.Actor, uri string) (string, error) {
	if uri != actor.Uri {
		return fmt.Sprintf("skip: %s cannot delete actor %s", actor.Uri, uri), nil
	}
	if actor.IsDeleted {
		return "skip: already deleted", nil
	}
	if err := ib.repo.MarkActorDeleted(actor.Id); err != nil {
		return "", err
	}
	ib.logger.Infof("Actor deleted: %s", actor.Uri)
	return "ok: actor deleted", nil
}

func (ib *inbox) deleteNote(ctx context.Context, actor *dal.Actor, uri string) (string, error) {
	return WithLock(ctx, ib.locks, uri, func() (string, error) {
		note, err := ib.repo.GetNoteByUri(uri)
		if err != nil {
			return "", err
		}
		if note == nil {
			return "skip: note not found", nil
		}
		if note.AuthorId != actor.Id {
			return "skip: actor is not the author of the note", nil
		}
		if err = ib.repo.DeleteNote(note.Id); err != nil {
			return "", err
		}
		ib.logger.Infof("Note deleted: %s", uri)
		return "ok: note deleted", nil
	})
}

func (ib *inbox) announce(ctx context.Context, actor *dal.Actor, act *dto.Announce, rctx *ResolutionContext) (string, error) {

	if shared.HostOf(act.Id) != shared.HostOf(actor.Uri) {
		return "", fmt.Errorf("%w: announce %s claimed by %s", shared.ErrInvalidActor, act.Id, actor.Uri)
	}

	existing, err := ib.notes.FetchNote(act.Id)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "skip: note exists", nil
	}

	target, err := ib.notes.ResolveNote(ctx, act.Object, actor.Host, rctx)
	if err != nil {
		var statusErr *StatusError
		switch {
		case errors.Is(err, shared.ErrFederationBlocked):
			return fmt.Sprintf("skip: announce target %s is blocked", act.Object.Id()), nil
		case errors.As(err, &statusErr) && !statusErr.IsRetryable():
			return fmt.Sprintf("skip: announce target %s returned %d", act.Object.Id(), statusErr.StatusCode), nil
		}
		return "", err
	}

	visible, err := IsVisibleFor(ib.repo, target, actor.Id)
	if err != nil {
		return "", err
	}
	if !visible {
		return "skip: announce target is not visible to actor", nil
	}

	audience, err := ParseAudience(ib.repo, ib.idb, actor, act.To, act.Cc)
	if err != nil {
		return "", err
	}
	prepared := ib.notes.PrepareRenote(actor, act.Id, target, audience, act.Published)
	_, isNew, err := ib.notes.SaveNoteOnce(ctx, prepared)
	if err != nil {
		return "", err
	}
	if !isNew {
		return "skip: note exists", nil
	}
	return "ok", nil
}

func (ib *inbox) undo(ctx context.Context, actor *dal.Actor, act *dto.Undo, rctx *ResolutionContext) (string, error) {

	inner, err := ib.resolveActivity(ctx, act.Object, rctx)
	if err != nil {
		return "", err
	}
	// Only what the sender did itself can be undone
	if inner.Base().Actor != actor.Uri {
		return "", fmt.Errorf("%w: undoing activity of %s", shared.ErrInvalidActor, inner.Base().Actor)
	}

	switch obj := inner.(type) {
	case *dto.Follow:
		return ib.undoFollow(actor, obj)
	case *dto.Block:
		return ib.undoBlock(actor, obj)
	case *dto.Like:
		return ib.undoLike(actor, obj)
	case *dto.Announce:
		return ib.undoAnnounce(ctx, actor, obj)
	case *dto.Accept:
		return ib.undoAccept(ctx, actor, obj, rctx)
	}
	return fmt.Sprintf("skip: unknown object type %s", inner.Base().Type), nil
}

func (ib *inbox) undoAnnounce(ctx context.Context, actor *dal.Actor, act *dto.Announce) (string, error) {
	return WithLock(ctx, ib.locks, act.Id, func() (string, error) {
		note, err := ib.repo.GetNoteByUri(act.Id)
		if err != nil {
			return "", err
		}
		if note == nil || note.AuthorId != actor.Id || note.RenoteId == "" {
			return "skip: no such announce", nil
		}
		if err = ib.repo.DeleteNote(note.Id); err != nil {
			return "", err
		}
		return "ok: renote deleted", nil
	})
}
