package logic

import (
	"crypto/sha256"
	"encoding/base64"
	"fedi_engine/shared"
	"fmt"
	"github.com/go-fed/httpsig"
	"net/http"
	"net/url"
	"strings"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_request_signer.go -package mocks fedi_engine/logic IRequestSigner

const (
	ContentTypeActivity = "application/activity+json"
	AcceptActivity      = `application/activity+json, application/ld+json; profile="https://www.w3.org/ns/activitystreams"`
)

var (
	postSignedHeaders = []string{httpsig.RequestTarget, "date", "host", "digest"}
	getSignedHeaders  = []string{httpsig.RequestTarget, "date", "host", "accept"}
)

// SignedRequest is a request ready to be put on the wire. Header includes the Signature.
type SignedRequest struct {
	Method string
	Url    string
	Header http.Header
	Body   []byte
	Level  SigLevel
}

type IRequestSigner interface {
	SignPost(key *ActorKey, target string, body []byte, digest string, extra http.Header) (*SignedRequest, error)
	SignGet(key *ActorKey, target string, extra http.Header) (*SignedRequest, error)
}

type requestSigner struct {
	clock shared.IClock
}

func NewRequestSigner(clock shared.IClock) IRequestSigner {
	return &requestSigner{clock}
}

// MakeDigest returns the RFC 3230 Digest header value for body.
func MakeDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
}

// SignPost signs a POST of body. A non-empty digest is used verbatim instead of hashing body again.
func (rs *requestSigner) SignPost(
	key *ActorKey,
	target string,
	body []byte,
	digest string,
	extra http.Header,
) (*SignedRequest, error) {

	req, err := rs.newRequest(http.MethodPost, target, extra)
	if err != nil {
		return nil, err
	}
	if digest == "" {
		digest = MakeDigest(body)
	}
	req.Header.Set("Content-Type", ContentTypeActivity)
	req.Header.Set("Digest", digest)

	if err = rs.sign(key, req, postSignedHeaders); err != nil {
		return nil, err
	}
	return &SignedRequest{http.MethodPost, target, req.Header, body, key.Level}, nil
}

func (rs *requestSigner) SignGet(key *ActorKey, target string, extra http.Header) (*SignedRequest, error) {

	req, err := rs.newRequest(http.MethodGet, target, extra)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", AcceptActivity)

	if err = rs.sign(key, req, getSignedHeaders); err != nil {
		return nil, err
	}
	return &SignedRequest{http.MethodGet, target, req.Header, nil, key.Level}, nil
}

func (rs *requestSigner) newRequest(method, target string, extra http.Header) (*http.Request, error) {

	parsedUrl, err := url.Parse(target)
	if err != nil || parsedUrl.Host == "" {
		return nil, fmt.Errorf("%w: invalid target url: %s", shared.ErrSigningFailed, target)
	}
	req := &http.Request{
		Method: method,
		URL:    parsedUrl,
		Host:   parsedUrl.Host,
		Header: http.Header{},
	}
	for name, vals := range extra {
		for _, val := range vals {
			req.Header.Add(name, val)
		}
	}
	req.Header.Set("Host", parsedUrl.Host)
	req.Header.Set("Date", rs.clock.Now().UTC().Format(http.TimeFormat))
	return req, nil
}

func (rs *requestSigner) sign(key *ActorKey, req *http.Request, headers []string) error {

	if key == nil || key.PrivKey == nil {
		return fmt.Errorf("%w: missing key", shared.ErrSigningFailed)
	}
	algo := key.Algo
	if algo == "" {
		algo = httpsig.RSA_SHA256
	}

	// Signers are not safe for concurrent use; make a fresh one every time
	signer, _, err := httpsig.NewSigner(
		[]httpsig.Algorithm{algo},
		httpsig.DigestSha256,
		headers,
		httpsig.Signature,
		0)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSigningFailed, err)
	}

	// Digest is already in the headers; passing a nil body keeps the signer from adding its own
	if err = signer.SignRequest(key.PrivKey, key.KeyId, req, nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSigningFailed, err)
	}
	// httpsig always writes hs2019; the legacy draft names the algorithm
	if algo == httpsig.RSA_SHA256 {
		sig := req.Header.Get("Signature")
		req.Header.Set("Signature", strings.Replace(sig, `algorithm="hs2019"`, `algorithm="rsa-sha256"`, 1))
	}
	return nil
}
