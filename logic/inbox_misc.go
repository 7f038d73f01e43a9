package logic

import (
	"context"
	"encoding/json"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"github.com/google/uuid"
	"strings"
)

func (ib *inbox) like(actor *dal.Actor, act *dto.Like) (string, error) {

	note, err := ib.notes.FetchNote(act.Object.Id())
	if err != nil {
		return "", err
	}
	if note == nil {
		return fmt.Sprintf("skip: target note not found %s", act.Object.Id()), nil
	}
	visible, err := IsVisibleFor(ib.repo, note, actor.Id)
	if err != nil {
		return "", err
	}
	if !visible {
		return "skip: note is not visible to actor", nil
	}

	isNew, err := ib.repo.AddReaction(&dal.Reaction{
		Id:        uuid.NewString(),
		NoteId:    note.Id,
		UserId:    actor.Id,
		Reaction:  act.Reaction,
		CreatedAt: ib.clock.Now(),
	})
	if err != nil {
		return "", err
	}
	if !isNew {
		return "skip: already reacted", nil
	}
	return "ok", nil
}

func (ib *inbox) undoLike(actor *dal.Actor, act *dto.Like) (string, error) {
	note, err := ib.notes.FetchNote(act.Object.Id())
	if err != nil {
		return "", err
	}
	if note == nil {
		return "skip: target note not found", nil
	}
	removed, err := ib.repo.RemoveReaction(note.Id, actor.Id)
	if err != nil {
		return "", err
	}
	if !removed {
		return "skip: not reacted", nil
	}
	return "ok: deleted", nil
}

// Add and Remove are only understood for the actor's featured collection (pinned notes).
func (ib *inbox) checkFeaturedTarget(actor *dal.Actor, target string) error {
	if target == "" || actor.FeaturedUrl == "" || target != actor.FeaturedUrl {
		return fmt.Errorf("%w: %q", shared.ErrUnknownTarget, target)
	}
	return nil
}

func (ib *inbox) add(ctx context.Context, actor *dal.Actor, act *dto.Add, rctx *ResolutionContext) (string, error) {

	if err := ib.checkFeaturedTarget(actor, act.Target); err != nil {
		return "", err
	}
	note, err := ib.notes.ResolveNote(ctx, act.Object, actor.Host, rctx)
	if err != nil {
		return "", err
	}
	if note.AuthorId != actor.Id {
		return "skip: only own notes can be pinned", nil
	}
	err = ib.repo.AddPinnedNote(&dal.PinnedNote{UserId: actor.Id, NoteId: note.Id, CreatedAt: ib.clock.Now()})
	if err != nil {
		return "", err
	}
	return "ok", nil
}

func (ib *inbox) remove(actor *dal.Actor, act *dto.Remove) (string, error) {

	if err := ib.checkFeaturedTarget(actor, act.Target); err != nil {
		return "", err
	}
	note, err := ib.notes.FetchNote(act.Object.Id())
	if err != nil {
		return "", err
	}
	if note == nil {
		return "skip: note not found", nil
	}
	removed, err := ib.repo.RemovePinnedNote(actor.Id, note.Id)
	if err != nil {
		return "", err
	}
	if !removed {
		return "skip: note not pinned", nil
	}
	return "ok", nil
}

// Reports can name many users and notes; only the first local user we know is the target.
func (ib *inbox) flag(actor *dal.Actor, act *dto.Flag) (string, error) {

	var target *dal.Actor
	for _, uri := range act.ObjectUris {
		ref, ok := ib.idb.ParseLocal(uri)
		if !ok || ref.Type != shared.LocalUsers || ref.Id == "" || ref.Rest != "" {
			continue
		}
		user, err := ib.repo.GetActorById(ref.Id)
		if err != nil {
			return "", err
		}
		if user != nil && user.IsLocal() {
			target = user
			break
		}
	}
	if target == nil {
		return "skip: no local user reported", nil
	}

	urisJson, err := json.MarshalIndent(act.ObjectUris, "", "  ")
	if err != nil {
		return "", err
	}
	comment := ib.strict.Sanitize(act.Content) + "\n" + string(urisJson)
	err = ib.repo.AddAbuseReport(&dal.AbuseReport{
		Id:           uuid.NewString(),
		TargetUserId: target.Id,
		ReporterId:   actor.Id,
		Comment:      shared.TruncateBytes(comment, shared.MaxCommentLen),
		CreatedAt:    ib.clock.Now(),
	})
	if err != nil {
		return "", err
	}
	ib.logger.Infof("Abuse report from %s against %s", actor.Uri, target.Id)
	return "ok", nil
}

func (ib *inbox) read(actor *dal.Actor, act *dto.Read) (string, error) {

	uri := act.Object.Id()
	if !ib.idb.IsLocal(uri) {
		return fmt.Sprintf("skip: Read to foreign host (%s)", uri), nil
	}
	messageId := uri[strings.LastIndex(uri, "/")+1:]
	msg, err := ib.repo.GetDirectMessage(messageId)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "skip: message not found", nil
	}
	if msg.RecipientId != actor.Id {
		return "skip: actor is not the message recipient", nil
	}
	if err = ib.repo.MarkMessageRead(msg.Id); err != nil {
		return "", err
	}
	return fmt.Sprintf("ok: mark as read (%s => %s %s)", msg.SenderId, msg.RecipientId, msg.Id), nil
}
