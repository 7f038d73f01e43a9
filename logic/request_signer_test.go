package logic_test

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"fedi_engine/test"
	"fedi_engine/test/fakes"
	"github.com/go-fed/httpsig"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"strings"
	"sync"
	"testing"
)

const inboxUrl = "https://remote.example/users/bob/inbox"

type keyMaterial struct {
	rsaPub, rsaPriv         string
	ed25519Pub, ed25519Priv string
}

var (
	keysOnce   sync.Once
	sharedKeys keyMaterial
)

// aliceKeys returns one set of generated keys for the whole test binary; RSA generation is slow.
func aliceKeys(*testing.T) keyMaterial {
	keysOnce.Do(func() {
		ks := logic.NewKeyStore(test.MakeConfig(), fakes.NewMemRepo())
		var err error
		if sharedKeys.rsaPub, sharedKeys.rsaPriv, err = ks.MakeKeyPair(); err != nil {
			panic(err)
		}
		if sharedKeys.ed25519Pub, sharedKeys.ed25519Priv, err = ks.MakeEd25519KeyPair(); err != nil {
			panic(err)
		}
	})
	return sharedKeys
}

func parsePub(t *testing.T, pemStr string) crypto.PublicKey {
	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block)
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	return pub
}

func setupSignerTest(t *testing.T, withEd25519 bool) (logic.IKeyStore, logic.IRequestSigner) {
	cfg := test.MakeConfig()
	repo := fakes.NewMemRepo()
	keys := aliceKeys(t)
	stored := dal.ActorKeys{ActorId: "alice", RsaPrivKey: keys.rsaPriv}
	if withEd25519 {
		stored.Ed25519PrivKey = keys.ed25519Priv
	}
	repo.AddActor(test.MakeLocalActor("alice"), &stored)
	return logic.NewKeyStore(cfg, repo), logic.NewRequestSigner(fakes.NewClock(test.StartTime))
}

// asReceived rebuilds the request the way the remote server's handler would see it.
func asReceived(t *testing.T, signed *logic.SignedRequest) *http.Request {
	req, err := http.NewRequest(signed.Method, signed.Url, bytes.NewReader(signed.Body))
	require.NoError(t, err)
	req.Header = signed.Header.Clone()
	return req
}

func TestSigner_SignPostVerifiesWithRsa(t *testing.T) {
	keyStore, sut := setupSignerTest(t, false)
	key, err := keyStore.GetActorKey("alice", logic.SigLevelLegacy)
	require.NoError(t, err)
	assert.Equal(t, "https://local.example/users/alice#main-key", key.KeyId)

	body := []byte(`{"type":"Follow"}`)
	signed, err := sut.SignPost(key, inboxUrl, body, "", http.Header{"User-Agent": {"fedi_engine/1.0"}})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, signed.Method)
	assert.Equal(t, logic.MakeDigest(body), signed.Header.Get("Digest"))
	assert.Equal(t, logic.ContentTypeActivity, signed.Header.Get("Content-Type"))
	assert.Equal(t, "remote.example", signed.Header.Get("Host"))
	assert.Equal(t, "Fri, 01 Mar 2024 12:00:00 GMT", signed.Header.Get("Date"))
	assert.Equal(t, "fedi_engine/1.0", signed.Header.Get("User-Agent"))
	sig := signed.Header.Get("Signature")
	assert.Contains(t, sig, `headers="(request-target) date host digest"`)
	assert.Contains(t, sig, `algorithm="rsa-sha256"`)

	verifier, err := httpsig.NewVerifier(asReceived(t, signed))
	require.NoError(t, err)
	assert.Equal(t, key.KeyId, verifier.KeyId())
	assert.NoError(t, verifier.Verify(parsePub(t, aliceKeys(t).rsaPub), httpsig.RSA_SHA256))
}

func TestSigner_SignGetVerifies(t *testing.T) {
	keyStore, sut := setupSignerTest(t, false)
	key, err := keyStore.GetActorKey("alice", logic.SigLevelLegacy)
	require.NoError(t, err)

	signed, err := sut.SignGet(key, "https://remote.example/notes/1?page=true", nil)
	require.NoError(t, err)
	assert.Nil(t, signed.Body)
	assert.Equal(t, logic.AcceptActivity, signed.Header.Get("Accept"))
	assert.Empty(t, signed.Header.Get("Digest"))
	assert.Contains(t, signed.Header.Get("Signature"), `headers="(request-target) date host accept"`)

	verifier, err := httpsig.NewVerifier(asReceived(t, signed))
	require.NoError(t, err)
	assert.NoError(t, verifier.Verify(parsePub(t, aliceKeys(t).rsaPub), httpsig.RSA_SHA256))
}

func TestSigner_Ed25519Level(t *testing.T) {
	keyStore, sut := setupSignerTest(t, true)
	key, err := keyStore.GetActorKey("alice", logic.SigLevelEd25519)
	require.NoError(t, err)
	assert.Equal(t, logic.SigLevelEd25519, key.Level)
	assert.Equal(t, "https://local.example/users/alice#ed25519-key", key.KeyId)

	signed, err := sut.SignPost(key, inboxUrl, []byte("{}"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, logic.SigLevelEd25519, signed.Level)
	assert.Contains(t, signed.Header.Get("Signature"), `algorithm="hs2019"`)

	verifier, err := httpsig.NewVerifier(asReceived(t, signed))
	require.NoError(t, err)
	assert.NoError(t, verifier.Verify(parsePub(t, aliceKeys(t).ed25519Pub), httpsig.ED25519))
	// And not with the other key
	assert.Error(t, verifier.Verify(parsePub(t, aliceKeys(t).rsaPub), httpsig.RSA_SHA256))
}

func TestSigner_Ed25519FallsBackToRsa(t *testing.T) {
	keyStore, _ := setupSignerTest(t, false)
	key, err := keyStore.GetActorKey("alice", logic.SigLevelEd25519)
	require.NoError(t, err)
	assert.Equal(t, logic.SigLevelLegacy, key.Level)
	assert.Equal(t, httpsig.RSA_SHA256, key.Algo)
}

func TestSigner_EncryptedKey(t *testing.T) {
	cfg := test.MakeConfig()
	cfg.Secrets.PrivKeyPass = "hunter2"
	repo := fakes.NewMemRepo()
	ks := logic.NewKeyStore(cfg, repo)
	pub, priv, err := ks.MakeKeyPair()
	require.NoError(t, err)
	assert.Contains(t, priv, "ENCRYPTED")
	repo.AddActor(test.MakeLocalActor("dora"), &dal.ActorKeys{ActorId: "dora", RsaPrivKey: priv})

	key, err := ks.GetActorKey("dora", logic.SigLevelLegacy)
	require.NoError(t, err)
	signed, err := logic.NewRequestSigner(fakes.NewClock(test.StartTime)).SignPost(key, inboxUrl, []byte("{}"), "", nil)
	require.NoError(t, err)
	verifier, err := httpsig.NewVerifier(asReceived(t, signed))
	require.NoError(t, err)
	assert.NoError(t, verifier.Verify(parsePub(t, pub), httpsig.RSA_SHA256))

	cfg.Secrets.PrivKeyPass = "wrong"
	_, err = ks.GetActorKey("dora", logic.SigLevelLegacy)
	assert.ErrorIs(t, err, shared.ErrSigningFailed)
}

func TestSigner_Failures(t *testing.T) {
	keyStore, sut := setupSignerTest(t, false)
	key, err := keyStore.GetActorKey("alice", logic.SigLevelLegacy)
	require.NoError(t, err)

	_, err = sut.SignPost(nil, inboxUrl, []byte("{}"), "", nil)
	assert.ErrorIs(t, err, shared.ErrSigningFailed)
	_, err = sut.SignPost(&logic.ActorKey{KeyId: "x"}, inboxUrl, []byte("{}"), "", nil)
	assert.ErrorIs(t, err, shared.ErrSigningFailed)
	_, err = sut.SignGet(key, "not a url", nil)
	assert.ErrorIs(t, err, shared.ErrSigningFailed)
	_, err = sut.SignPost(key, "/relative/inbox", nil, "", nil)
	assert.ErrorIs(t, err, shared.ErrSigningFailed)

	_, err = keyStore.GetActorKey("nobody", logic.SigLevelLegacy)
	assert.True(t, errors.Is(err, shared.ErrSigningFailed))
}

func TestSigner_Digest(t *testing.T) {
	keyStore, sut := setupSignerTest(t, false)
	key, err := keyStore.GetActorKey("alice", logic.SigLevelLegacy)
	require.NoError(t, err)

	// SHA-256 of the empty string
	assert.Equal(t, "SHA-256=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", logic.MakeDigest(nil))

	properties := gopter.NewProperties(nil)
	properties.Property("computed digest is stable and well-formed", prop.ForAll(
		func(body []byte) bool {
			digest := logic.MakeDigest(body)
			signed, err := sut.SignPost(key, inboxUrl, body, "", nil)
			return err == nil &&
				strings.HasPrefix(digest, "SHA-256=") &&
				digest == logic.MakeDigest(append([]byte{}, body...)) &&
				signed.Header.Get("Digest") == digest
		},
		gen.SliceOf(gen.UInt8()),
	))
	properties.Property("precomputed digest is reused verbatim", prop.ForAll(
		func(body []byte) bool {
			precomputed := logic.MakeDigest([]byte("queued"))
			signed, err := sut.SignPost(key, inboxUrl, body, precomputed, nil)
			return err == nil && signed.Header.Get("Digest") == precomputed
		},
		gen.SliceOf(gen.UInt8()),
	))
	properties.TestingRun(t)
}
