package logic

import (
	"context"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fedi_engine/dal"
	"fedi_engine/shared"
	"fmt"
	"github.com/go-fed/httpsig"
	"net/http"
	"regexp"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_httpsig_checker.go -package mocks fedi_engine/logic IHttpSigChecker

type IHttpSigChecker interface {
	// Check returns the actor who signed the request. A non-empty problem means the request is refused;
	// an error means we could not decide.
	Check(ctx context.Context, r *http.Request, body []byte) (*dal.Actor, string, error)
}

type httpSigChecker struct {
	logger  shared.ILogger
	persons IPersonService
	policy  IFederationPolicy
	reKeyId *regexp.Regexp
}

func NewHttpSigChecker(logger shared.ILogger, persons IPersonService, policy IFederationPolicy) IHttpSigChecker {
	reKeyId := regexp.MustCompile("keyId=['\"]([^'\"]+)['\"]")
	return &httpSigChecker{logger, persons, policy, reKeyId}
}

func (chk *httpSigChecker) Check(ctx context.Context, r *http.Request, body []byte) (*dal.Actor, string, error) {

	var err error

	var sigHeader = r.Header.Get("Signature")
	groups := chk.reKeyId.FindStringSubmatch(sigHeader)
	if groups == nil {
		return nil, "Missing or invalid 'Signature' header", nil
	}
	keyId := groups[1]

	if digest := r.Header.Get("Digest"); digest == "" {
		return nil, "Missing 'Digest' header", nil
	} else if digest != MakeDigest(body) {
		return nil, "Digest does not match request body", nil
	}

	host := shared.HostOf(keyId)
	if !chk.policy.IsAllowed(host) {
		return nil, fmt.Sprintf("Federation with %s is blocked", host), nil
	}

	var actor *dal.Actor
	if actor, err = chk.persons.ResolveKeyOwner(ctx, keyId); err != nil {
		return nil, fmt.Sprintf("Failed to retrieve owner of key %s: %v", keyId, err), nil
	}

	problem := chk.verify(r, actor)
	if problem == "" {
		return actor, "", nil
	}

	// The key may have been rotated since we stored the actor
	chk.logger.Infof("Signature of %s did not verify with cached key, refetching actor: %s", actor.Uri, problem)
	if actor, err = chk.persons.UpdatePerson(ctx, actor.Uri, NewResolutionContext("")); err != nil {
		return nil, fmt.Sprintf("Failed to refetch actor %s: %v", keyId, err), nil
	}
	if problem = chk.verify(r, actor); problem != "" {
		return nil, problem, nil
	}
	return actor, "", nil
}

func (chk *httpSigChecker) verify(r *http.Request, actor *dal.Actor) string {

	verifier, err := httpsig.NewVerifier(r)
	if err != nil {
		return fmt.Sprintf("Invalid signature: %v", err)
	}

	block, _ := pem.Decode([]byte(actor.PublicKeyPem))
	if block == nil {
		return fmt.Sprintf("Actor has no usable public key: %s", actor.Uri)
	}

	var pubKey interface{}
	if pubKey, err = x509.ParsePKIXPublicKey(block.Bytes); err != nil {
		return fmt.Sprintf("Failed to parse sender's public key: %v", err)
	}

	var algo httpsig.Algorithm
	switch pubKey.(type) {
	case *rsa.PublicKey:
		algo = httpsig.RSA_SHA256
	case ed25519.PublicKey:
		algo = httpsig.ED25519
	default:
		return fmt.Sprintf("Unsupported key type of %s", actor.Uri)
	}

	if err = verifier.Verify(pubKey, algo); err != nil {
		return fmt.Sprintf("Incorrect signature: %v", err)
	}
	return ""
}
