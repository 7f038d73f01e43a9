package logic

import (
	"context"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"github.com/microcosm-cc/bluemonday"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_inbox.go -package mocks fedi_engine/logic IInbox

// IInbox applies activities received from an authenticated remote actor.
type IInbox interface {
	// PerformActivity returns a short outcome ("ok...", "skip: ...") or an error for malformed input.
	PerformActivity(ctx context.Context, actor *dal.Actor, raw dto.Object) (string, error)
}

type inbox struct {
	cfg       *shared.Config
	logger    shared.ILogger
	idb       shared.IdBuilder
	repo      dal.IRepo
	resolver  IResolver
	persons   IPersonService
	notes     INoteService
	locks     ILockManager
	renderer  IRenderer
	messenger IMessenger
	metrics   IMetrics
	clock     shared.IClock
	strict    *bluemonday.Policy
}

func NewInbox(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	resolver IResolver,
	persons IPersonService,
	notes INoteService,
	locks ILockManager,
	renderer IRenderer,
	messenger IMessenger,
	metrics IMetrics,
	clock shared.IClock,
) IInbox {
	return &inbox{
		cfg:       cfg,
		logger:    logger,
		idb:       shared.IdBuilder{Host: cfg.Host},
		repo:      repo,
		resolver:  resolver,
		persons:   persons,
		notes:     notes,
		locks:     locks,
		renderer:  renderer,
		messenger: messenger,
		metrics:   metrics,
		clock:     clock,
		strict:    bluemonday.StrictPolicy(),
	}
}

func (ib *inbox) PerformActivity(ctx context.Context, actor *dal.Actor, raw dto.Object) (string, error) {

	// Suspended actors cannot change anything, not even retract their own content
	if actor.IsSuspended {
		return "skip: actor suspended", nil
	}
	return ib.perform(ctx, actor, raw, NewResolutionContext(""))
}

func (ib *inbox) perform(ctx context.Context, actor *dal.Actor, raw dto.Object, rctx *ResolutionContext) (string, error) {
	if dto.IsCollectionOrOrderedCollection(raw) {
		return ib.performCollection(ctx, actor, raw, rctx)
	}
	outcome, err := ib.performOne(ctx, actor, raw, rctx)
	if err != nil {
		ib.metrics.InboxActivity(raw.Type(), "error")
	} else {
		ib.metrics.InboxActivity(raw.Type(), outcome)
	}
	return outcome, err
}

// A failing item is logged and dropped; the rest of the batch goes on.
func (ib *inbox) performCollection(
	ctx context.Context,
	actor *dal.Actor,
	coll dto.Object,
	rctx *ResolutionContext,
) (string, error) {

	items := dto.CollectionItems(coll)
	if len(items) >= ib.cfg.Federation.ResolveRecursionLimit {
		return "", fmt.Errorf("%w: collection of %d items", shared.ErrRecursionLimit, len(items))
	}

	done := 0
	for _, item := range items {
		act, err := ib.resolver.Resolve(ctx, item, rctx)
		if err != nil {
			ib.logger.Warnf("Skipping collection item %s: %v", item.Id(), err)
			continue
		}
		if act.Id() == "" || shared.HostOf(act.Id()) != shared.HostOf(actor.Uri) {
			ib.logger.Debugf("Skipping collection item %s: id is missing or from another host", item.Id())
			continue
		}
		outcome, err := ib.perform(ctx, actor, act, rctx)
		if err != nil {
			ib.logger.Warnf("Collection item %s failed: %v", act.Id(), err)
			continue
		}
		ib.logger.Debugf("Collection item %s: %s", act.Id(), outcome)
		done++
	}
	return fmt.Sprintf("ok: processed %d of %d items", done, len(items)), nil
}

func (ib *inbox) performOne(ctx context.Context, actor *dal.Actor, raw dto.Object, rctx *ResolutionContext) (string, error) {

	activity, err := dto.ParseActivity(raw)
	if err != nil {
		return "", err
	}
	if _, ok := activity.(*dto.Unknown); ok {
		ib.logger.Infof("Ignoring activity of unknown type %s from %s", raw.Type(), actor.Uri)
		return fmt.Sprintf("skip: unknown activity type %s", raw.Type()), nil
	}
	if activity.Base().Actor != actor.Uri {
		return "", fmt.Errorf("%w: activity actor %s sent by %s", shared.ErrInvalidActor, activity.Base().Actor, actor.Uri)
	}

	ib.logger.Debugf("%s from %s: %s", activity.Base().Type, actor.Uri, activity.Base().Id)

	switch act := activity.(type) {
	case *dto.Create:
		return ib.create(ctx, actor, act, rctx)
	case *dto.Update:
		return ib.update(ctx, actor, act, rctx)
	case *dto.Delete:
		return ib.delete(ctx, actor, act)
	case *dto.Follow:
		return ib.follow(actor, act)
	case *dto.Accept:
		return ib.accept(ctx, actor, act, rctx)
	case *dto.Reject:
		return ib.reject(ctx, actor, act, rctx)
	case *dto.Add:
		return ib.add(ctx, actor, act, rctx)
	case *dto.Remove:
		return ib.remove(actor, act)
	case *dto.Announce:
		return ib.announce(ctx, actor, act, rctx)
	case *dto.Like:
		return ib.like(actor, act)
	case *dto.Undo:
		return ib.undo(ctx, actor, act, rctx)
	case *dto.Block:
		return ib.block(actor, act)
	case *dto.Flag:
		return ib.flag(actor, act)
	case *dto.Read:
		return ib.read(actor, act)
	default:
		return fmt.Sprintf("skip: unknown activity type %s", raw.Type()), nil
	}
}

// resolveActivity dereferences an activity nested in another (Undo, Accept, Reject).
func (ib *inbox) resolveActivity(
	ctx context.Context,
	ref dto.Ref,
	rctx *ResolutionContext,
) (dto.Activity, error) {
	obj, err := ib.resolver.Resolve(ctx, ref, rctx)
	if err != nil {
		return nil, err
	}
	return dto.ParseActivity(obj)
}

// localActor finds the local actor a URI points to, or nil if it is not one of ours.
func (ib *inbox) localActor(uri string) (*dal.Actor, error) {
	if !ib.idb.IsLocal(uri) {
		return nil, nil
	}
	actor, err := ib.persons.FetchPerson(uri)
	if err != nil || actor == nil || !actor.IsLocal() {
		return nil, err
	}
	return actor, nil
}
