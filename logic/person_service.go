package logic

import (
	"context"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"strings"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_person_service.go -package mocks fedi_engine/logic IPersonService

// IPersonService keeps our copies of remote actors.
type IPersonService interface {
	FetchPerson(uri string) (*dal.Actor, error)
	ResolvePerson(ctx context.Context, uri string, rctx *ResolutionContext) (*dal.Actor, error)
	UpdatePerson(ctx context.Context, uri string, rctx *ResolutionContext) (*dal.Actor, error)
	ResolveKeyOwner(ctx context.Context, keyId string) (*dal.Actor, error)
}

type personService struct {
	logger   shared.ILogger
	repo     dal.IRepo
	resolver IResolver
	clock    shared.IClock
	idb      shared.IdBuilder
}

func NewPersonService(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	resolver IResolver,
	clock shared.IClock,
) IPersonService {
	return &personService{logger, repo, resolver, clock, shared.IdBuilder{Host: cfg.Host}}
}

// FetchPerson looks only at what we already have; it never goes to the network.
func (ps *personService) FetchPerson(uri string) (*dal.Actor, error) {
	if actor, err := ps.repo.GetActorByUri(uri); err != nil || actor != nil {
		return actor, err
	}
	if ref, ok := ps.idb.ParseLocal(uri); ok && ref.Type == shared.LocalUsers && ref.Rest == "" {
		actor, err := ps.repo.GetActorById(ref.Id)
		if err != nil || actor == nil || !actor.IsLocal() {
			return nil, err
		}
		return actor, nil
	}
	return nil, nil
}

func (ps *personService) ResolvePerson(ctx context.Context, uri string, rctx *ResolutionContext) (*dal.Actor, error) {
	actor, err := ps.FetchPerson(uri)
	if err != nil || actor != nil {
		return actor, err
	}
	if ps.idb.IsLocal(uri) {
		return nil, fmt.Errorf("%w: no local actor at %s", shared.ErrUnresolvableReference, uri)
	}
	return ps.UpdatePerson(ctx, uri, rctx)
}

// UpdatePerson fetches the actor document and overwrites our copy.
func (ps *personService) UpdatePerson(ctx context.Context, uri string, rctx *ResolutionContext) (*dal.Actor, error) {

	if ps.idb.IsLocal(uri) {
		return nil, fmt.Errorf("%w: refusing to update local actor %s", shared.ErrInvalidActor, uri)
	}
	obj, err := ps.resolver.Resolve(ctx, dto.UriRef(uri), rctx)
	if err != nil {
		return nil, err
	}
	actor, err := ps.toActor(obj, uri)
	if err != nil {
		return nil, err
	}
	if err = ps.repo.UpsertRemoteActor(actor); err != nil {
		return nil, err
	}
	ps.logger.Debugf("Stored actor %s", actor.Uri)
	return actor, nil
}

func (ps *personService) toActor(obj dto.Object, uri string) (*dal.Actor, error) {

	if !dto.IsActor(obj) {
		return nil, fmt.Errorf("%w: %s is %s, not an actor", shared.ErrUnexpectedType, uri, obj.Type())
	}
	var info dto.UserInfo
	if err := obj.Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidActivityPubResponse, uri, err)
	}
	host := shared.HostOf(info.Id)
	if info.Id == "" || host != shared.HostOf(uri) {
		return nil, fmt.Errorf("%w: actor id %s does not match %s", shared.ErrInvalidActivityPubResponse, info.Id, uri)
	}
	if info.Inbox == "" || shared.HostOf(info.Inbox) != host {
		return nil, fmt.Errorf("%w: actor %s has an invalid inbox", shared.ErrInvalidActivityPubResponse, info.Id)
	}
	if info.PublicKey.Owner != "" && info.PublicKey.Owner != info.Id {
		return nil, fmt.Errorf("%w: key of %s is owned by %s", shared.ErrInvalidActivityPubResponse,
			info.Id, info.PublicKey.Owner)
	}

	return &dal.Actor{
		Uri:           info.Id,
		Host:          host,
		Username:      info.PreferredUserName,
		Name:          info.Name,
		Inbox:         info.Inbox,
		SharedInbox:   info.Endpoints.SharedInbox,
		FeaturedUrl:   info.Featured,
		FollowersUrl:  info.Followers,
		PublicKeyId:   info.PublicKey.Id,
		PublicKeyPem:  info.PublicKey.PublicKeyPem,
		IsLocked:      info.ManuallyApproves,
		LastFetchedAt: ps.clock.Now(),
	}, nil
}

// ResolveKeyOwner finds the actor a signature's keyId belongs to, fetching it if we have not seen it yet.
func (ps *personService) ResolveKeyOwner(ctx context.Context, keyId string) (*dal.Actor, error) {
	actor, err := ps.repo.GetActorByKeyId(keyId)
	if err != nil || actor != nil {
		return actor, err
	}
	ownerUri, _, _ := strings.Cut(keyId, "#")
	actor, err = ps.ResolvePerson(ctx, ownerUri, NewResolutionContext(""))
	if err != nil {
		return nil, err
	}
	if actor.PublicKeyId != keyId {
		return nil, fmt.Errorf("%w: %s does not publish key %s", shared.ErrInvalidActor, actor.Uri, keyId)
	}
	return actor, nil
}
