package logic

import (
	"context"
	"fedi_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_activity_sender.go -package mocks fedi_engine/logic IActivitySender

// IActivitySender puts signed and unsigned ActivityPub requests on the wire.
type IActivitySender interface {
	SignedPost(ctx context.Context, senderId string, level SigLevel, inboxUrl string, body []byte, digest string) (*ApResponse, error)
	SignedGet(ctx context.Context, signerId, url string) (*ApResponse, error)
	Get(ctx context.Context, url string) (*ApResponse, error)
}

type activitySender struct {
	logger    shared.ILogger
	userAgent shared.IUserAgent
	keyStore  IKeyStore
	signer    IRequestSigner
	client    IApHttpClient
}

func NewActivitySender(
	logger shared.ILogger,
	userAgent shared.IUserAgent,
	keyStore IKeyStore,
	signer IRequestSigner,
	client IApHttpClient,
) IActivitySender {
	return &activitySender{logger, userAgent, keyStore, signer, client}
}

func (sender *activitySender) SignedPost(
	ctx context.Context,
	senderId string,
	level SigLevel,
	inboxUrl string,
	body []byte,
	digest string,
) (*ApResponse, error) {

	key, err := sender.keyStore.GetActorKey(senderId, level)
	if err != nil {
		return nil, err
	}
	signed, err := sender.signer.SignPost(key, inboxUrl, body, digest, sender.userAgent.Header())
	if err != nil {
		return nil, err
	}
	return sender.client.Do(ctx, &ApRequest{signed.Method, signed.Url, signed.Header, signed.Body})
}

func (sender *activitySender) SignedGet(ctx context.Context, signerId, url string) (*ApResponse, error) {

	key, err := sender.keyStore.GetActorKey(signerId, SigLevelLegacy)
	if err != nil {
		return nil, err
	}
	signed, err := sender.signer.SignGet(key, url, sender.userAgent.Header())
	if err != nil {
		return nil, err
	}
	return sender.client.Do(ctx, &ApRequest{signed.Method, signed.Url, signed.Header, nil})
}

func (sender *activitySender) Get(ctx context.Context, url string) (*ApResponse, error) {
	header := sender.userAgent.Header()
	header.Set("Accept", AcceptActivity)
	return sender.client.Do(ctx, &ApRequest{Method: "GET", Url: url, Header: header})
}
