package logic

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/shared"
	"fmt"
	"github.com/go-fed/httpsig"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_key_store.go -package mocks fedi_engine/logic IKeyStore

// SigLevel is the HTTP signature implementation level a remote host understands.
type SigLevel string

const (
	SigLevelLegacy  SigLevel = "00" // draft-cavage, RSA-SHA256
	SigLevelEd25519 SigLevel = "01"
)

// ActorKey is everything needed to sign a request on behalf of a local actor.
type ActorKey struct {
	KeyId   string
	Level   SigLevel
	Algo    httpsig.Algorithm
	PrivKey crypto.PrivateKey
}

type IKeyStore interface {
	GetActorKey(actorId string, level SigLevel) (*ActorKey, error)
	MakeKeyPair() (pubKey, privKey string, err error)
	MakeEd25519KeyPair() (pubKey, privKey string, err error)
}

type keyStore struct {
	cfg  *shared.Config
	repo dal.IRepo
	idb  shared.IdBuilder
}

func NewKeyStore(cfg *shared.Config, repo dal.IRepo) IKeyStore {
	return &keyStore{cfg, repo, shared.IdBuilder{Host: cfg.Host}}
}

func (ks *keyStore) getKeys(actorId string) (*dal.ActorKeys, error) {
	if sa := ks.cfg.SystemActor; sa != nil && actorId == sa.User {
		return &dal.ActorKeys{ActorId: actorId, RsaPrivKey: sa.PrivKey, Ed25519PrivKey: sa.Ed25519PrivKey}, nil
	}
	keys, err := ks.repo.GetActorKeys(actorId)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		return nil, fmt.Errorf("%w: no keys for actor %s", shared.ErrSigningFailed, actorId)
	}
	return keys, nil
}

// GetActorKey returns the newer key if requested and available; otherwise the legacy RSA key.
func (ks *keyStore) GetActorKey(actorId string, level SigLevel) (*ActorKey, error) {

	keys, err := ks.getKeys(actorId)
	if err != nil {
		return nil, err
	}

	if level == SigLevelEd25519 && keys.Ed25519PrivKey != "" {
		privKey, err := ks.parseEd25519(keys.Ed25519PrivKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrSigningFailed, err)
		}
		return &ActorKey{
			KeyId:   ks.idb.UserEd25519KeyId(actorId),
			Level:   SigLevelEd25519,
			Algo:    httpsig.ED25519,
			PrivKey: privKey,
		}, nil
	}

	privKey, err := ks.parseRsa(keys.RsaPrivKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSigningFailed, err)
	}
	return &ActorKey{
		KeyId:   ks.idb.UserKeyId(actorId),
		Level:   SigLevelLegacy,
		Algo:    httpsig.RSA_SHA256,
		PrivKey: privKey,
	}, nil
}

func (ks *keyStore) decodePem(pemStr string) ([]byte, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block in key")
	}
	privKeyBytes := block.Bytes
	//lint:ignore SA1019 keys are stored in the legacy encrypted PEM format
	if x509.IsEncryptedPEMBlock(block) {
		var err error
		privKeyBytes, err = x509.DecryptPEMBlock(block, []byte(ks.cfg.Secrets.PrivKeyPass))
		if err != nil {
			return nil, err
		}
	}
	return privKeyBytes, nil
}

func (ks *keyStore) parseRsa(pemStr string) (*rsa.PrivateKey, error) {
	privKeyBytes, err := ks.decodePem(pemStr)
	if err != nil {
		return nil, err
	}
	if privKey, err := x509.ParsePKCS1PrivateKey(privKeyBytes); err == nil {
		return privKey, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(privKeyBytes)
	if err != nil {
		return nil, err
	}
	privKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("key is not an RSA key")
	}
	return privKey, nil
}

func (ks *keyStore) parseEd25519(pemStr string) (ed25519.PrivateKey, error) {
	privKeyBytes, err := ks.decodePem(pemStr)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKCS8PrivateKey(privKeyBytes)
	if err != nil {
		return nil, err
	}
	privKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("key is not an Ed25519 key")
	}
	return privKey, nil
}

func (ks *keyStore) MakeKeyPair() (pubKey, privKey string, err error) {

	pubKey = ""
	privKey = ""
	err = nil

	// Generate RSA key
	var key *rsa.PrivateKey
	key, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return
	}
	// Extract public component.
	pub := key.Public()

	// Encode private key to PKCS#1, with password
	keyRaw := x509.MarshalPKCS1PrivateKey(key)
	//lint:ignore SA1019 keys are stored in the legacy encrypted PEM format
	encBlock, err := x509.EncryptPEMBlock(
		rand.Reader, "RSA PRIVATE KEY", keyRaw,
		[]byte(ks.cfg.Secrets.PrivKeyPass), x509.PEMCipherAES256)
	if err != nil {
		return
	}
	keyPEM := pem.EncodeToMemory(encBlock)

	// Public key goes out as PKIX, which is what remote servers parse
	pubRaw, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubRaw})

	pubKey = string(pubPEM)
	privKey = string(keyPEM)

	return
}

func (ks *keyStore) MakeEd25519KeyPair() (pubKey, privKey string, err error) {

	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	keyRaw, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", err
	}
	pubRaw, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", "", err
	}
	pubKey = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubRaw}))
	privKey = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyRaw}))
	return
}
