package logic

import (
	"context"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
)

func (ib *inbox) follow(actor *dal.Actor, act *dto.Follow) (string, error) {

	ib.logger.Infof("Handling Follow activity from %s to %s", actor.Uri, act.Object.Id())

	followee, err := ib.localActor(act.Object.Id())
	if err != nil {
		return "", err
	}
	if followee == nil {
		return "skip: followee not found", nil
	}

	blocked, err := ib.repo.IsBlocking(followee.Id, actor.Id)
	if err != nil {
		return "", err
	}
	if blocked {
		if err = ib.respond(followee, actor, ib.renderer.RenderReject(followee, act.Raw)); err != nil {
			return "", err
		}
		return "skip: follower is blocked", nil
	}

	following, err := ib.repo.IsFollowing(actor.Id, followee.Id)
	if err != nil {
		return "", err
	}
	// A repeated Follow means the other side lost our Accept
	if following {
		if err = ib.respond(followee, actor, ib.renderer.RenderAccept(followee, act.Raw)); err != nil {
			return "", err
		}
		return "ok: already following", nil
	}

	if followee.IsLocked {
		req, err := ib.repo.GetFollowRequest(actor.Id, followee.Id)
		if err != nil {
			return "", err
		}
		if req != nil {
			return "skip: follow request exists", nil
		}
		err = ib.repo.AddFollowRequest(&dal.FollowRequest{
			RequestId:  act.Id,
			FollowerId: actor.Id,
			FolloweeId: followee.Id,
			CreatedAt:  ib.clock.Now(),
		})
		if err != nil {
			return "", err
		}
		return "ok: follow request created", nil
	}

	err = ib.repo.AddFollowing(&dal.Following{FollowerId: actor.Id, FolloweeId: followee.Id, CreatedAt: ib.clock.Now()})
	if err != nil {
		return "", err
	}
	if err = ib.respond(followee, actor, ib.renderer.RenderAccept(followee, act.Raw)); err != nil {
		return "", err
	}
	return "ok", nil
}

// respond queues an Accept or Reject to the follower's own inbox.
func (ib *inbox) respond(followee, follower *dal.Actor, activity *dto.ActivityOut) error {
	if follower.Inbox == "" {
		ib.logger.Warnf("Cannot answer follow from %s: no inbox", follower.Uri)
		return nil
	}
	targets := []DeliveryTarget{{Inbox: follower.Inbox}}
	return ib.messenger.EnqueueActivity(followee.Id, targets, activity)
}

// Accept of a Follow one of our users sent to actor.
func (ib *inbox) accept(ctx context.Context, actor *dal.Actor, act *dto.Accept, rctx *ResolutionContext) (string, error) {

	follower, outcome, err := ib.followResponse(ctx, actor, act.Object, rctx)
	if follower == nil {
		return outcome, err
	}

	req, err := ib.repo.GetFollowRequest(follower.Id, actor.Id)
	if err != nil {
		return "", err
	}
	if req == nil {
		return "skip: no follow request", nil
	}
	err = ib.repo.AddFollowing(&dal.Following{FollowerId: follower.Id, FolloweeId: actor.Id, CreatedAt: ib.clock.Now()})
	if err != nil {
		return "", err
	}
	if _, err = ib.repo.RemoveFollowRequest(follower.Id, actor.Id); err != nil {
		return "", err
	}
	ib.logger.Infof("Follow accepted: %s now follows %s", follower.Uri, actor.Uri)
	return "ok", nil
}

func (ib *inbox) reject(ctx context.Context, actor *dal.Actor, act *dto.Reject, rctx *ResolutionContext) (string, error) {

	follower, outcome, err := ib.followResponse(ctx, actor, act.Object, rctx)
	if follower == nil {
		return outcome, err
	}

	reqRemoved, err := ib.repo.RemoveFollowRequest(follower.Id, actor.Id)
	if err != nil {
		return "", err
	}
	// A Reject after an Accept ends the follow
	edgeRemoved, err := ib.repo.RemoveFollowing(follower.Id, actor.Id)
	if err != nil {
		return "", err
	}
	if !reqRemoved && !edgeRemoved {
		return "skip: no follow request", nil
	}
	ib.logger.Infof("Follow rejected: %s by %s", follower.Uri, actor.Uri)
	return "ok", nil
}

// followResponse finds the local follower behind the Follow an Accept or Reject answers.
// A nil result comes with the outcome or error to return.
func (ib *inbox) followResponse(
	ctx context.Context,
	actor *dal.Actor,
	ref dto.Ref,
	rctx *ResolutionContext,
) (*dal.Actor, string, error) {

	inner, err := ib.resolveActivity(ctx, ref, rctx)
	if err != nil {
		// Our own follow URL for a follow that no longer exists
		if errors.Is(err, shared.ErrUnresolvableReference) && ib.idb.IsLocal(ref.Id()) {
			return nil, "skip: no follow request", nil
		}
		return nil, "", err
	}
	follow, ok := inner.(*dto.Follow)
	if !ok {
		return nil, fmt.Sprintf("skip: unsupported object type %s", inner.Base().Type), nil
	}
	if follow.Object.Id() != actor.Uri {
		return nil, "", fmt.Errorf("%w: answering a follow of %s", shared.ErrInvalidActor, follow.Object.Id())
	}
	follower, err := ib.localActor(follow.Actor)
	if err != nil {
		return nil, "", err
	}
	if follower == nil {
		return nil, "skip: follower is not a local user", nil
	}
	return follower, "", nil
}

func (ib *inbox) block(actor *dal.Actor, act *dto.Block) (string, error) {

	blockee, err := ib.localActor(act.Object.Id())
	if err != nil {
		return "", err
	}
	if blockee == nil {
		return "skip: blockee not found", nil
	}

	err = ib.repo.AddBlocking(&dal.Blocking{BlockerId: actor.Id, BlockeeId: blockee.Id, CreatedAt: ib.clock.Now()})
	if err != nil {
		return "", err
	}
	// Blocking ends every relationship in both directions
	for _, pair := range [][2]string{{actor.Id, blockee.Id}, {blockee.Id, actor.Id}} {
		if _, err = ib.repo.RemoveFollowing(pair[0], pair[1]); err != nil {
			return "", err
		}
		if _, err = ib.repo.RemoveFollowRequest(pair[0], pair[1]); err != nil {
			return "", err
		}
	}
	ib.logger.Infof("%s blocked %s", actor.Uri, blockee.Id)
	return "ok", nil
}

func (ib *inbox) undoFollow(actor *dal.Actor, follow *dto.Follow) (string, error) {

	followee, err := ib.localActor(follow.Object.Id())
	if err != nil {
		return "", err
	}
	if followee == nil {
		return "skip: followee not found", nil
	}

	removed, err := ib.repo.RemoveFollowRequest(actor.Id, followee.Id)
	if err != nil {
		return "", err
	}
	if removed {
		return "ok: follow request canceled", nil
	}
	if removed, err = ib.repo.RemoveFollowing(actor.Id, followee.Id); err != nil {
		return "", err
	}
	if removed {
		ib.logger.Infof("%s unfollowed %s", actor.Uri, followee.Id)
		return "ok: unfollowed", nil
	}
	return "skip: not following", nil
}

func (ib *inbox) undoBlock(actor *dal.Actor, block *dto.Block) (string, error) {

	blockee, err := ib.localActor(block.Object.Id())
	if err != nil {
		return "", err
	}
	if blockee == nil {
		return "skip: blockee not found", nil
	}
	removed, err := ib.repo.RemoveBlocking(actor.Id, blockee.Id)
	if err != nil {
		return "", err
	}
	if !removed {
		return "skip: not blocking", nil
	}
	return "ok", nil
}

// Undo of an Accept: the remote actor drops one of our users from its followers.
func (ib *inbox) undoAccept(ctx context.Context, actor *dal.Actor, accept *dto.Accept, rctx *ResolutionContext) (string, error) {

	follower, outcome, err := ib.followResponse(ctx, actor, accept.Object, rctx)
	if follower == nil {
		return outcome, err
	}
	removed, err := ib.repo.RemoveFollowing(follower.Id, actor.Id)
	if err != nil {
		return "", err
	}
	if !removed {
		return "skip: not following", nil
	}
	return "ok: unfollowed", nil
}
