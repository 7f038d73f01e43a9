package test

import (
	"encoding/json"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"testing"
	"time"
)

const (
	LocalHost   = "local.example"
	RemoteHost  = "remote.example"
	ThirdHost   = "third.example"
	ObjectsTime = "2024-03-01T10:00:00Z"
)

// StartTime is where fake clocks start in tests.
var StartTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func MakeConfig() *shared.Config {
	cfg := shared.Config{Host: LocalHost}
	cfg.ApplyDefaults()
	return &cfg
}

// MakeLocalActor returns one of our own users. Local actors are addressed by id only.
func MakeLocalActor(id string) *dal.Actor {
	return &dal.Actor{Id: id, Username: id, Name: id}
}

func LocalActorUri(id string) string {
	return fmt.Sprintf("https://%s/users/%s", LocalHost, id)
}

func MakeRemoteActor(host, user string) *dal.Actor {
	uri := fmt.Sprintf("https://%s/users/%s", host, user)
	return &dal.Actor{
		Id:            host + "-" + user,
		Uri:           uri,
		Host:          host,
		Username:      user,
		Name:          user,
		Inbox:         uri + "/inbox",
		SharedInbox:   fmt.Sprintf("https://%s/inbox", host),
		FeaturedUrl:   uri + "/collections/featured",
		FollowersUrl:  uri + "/followers",
		PublicKeyId:   uri + "#main-key",
		LastFetchedAt: StartTime,
	}
}

// MakeActorDoc renders the actor document a remote server would serve for actor.
func MakeActorDoc(actor *dal.Actor, pubKeyPem string) dto.Object {
	return dto.Object{
		"@context":          []any{shared.ActivityStreamsNs, "https://w3id.org/security/v1"},
		"id":                actor.Uri,
		"type":              dto.TypePerson,
		"preferredUsername": actor.Username,
		"name":              actor.Name,
		"inbox":             actor.Inbox,
		"followers":         actor.FollowersUrl,
		"featured":          actor.FeaturedUrl,
		"endpoints":         map[string]any{"sharedInbox": actor.SharedInbox},
		"publicKey": map[string]any{
			"id":           actor.PublicKeyId,
			"owner":        actor.Uri,
			"publicKeyPem": pubKeyPem,
		},
	}
}

// Obj parses JSON written in a test.
func Obj(t *testing.T, js string) dto.Object {
	t.Helper()
	obj, err := dto.ParseObject([]byte(js))
	if err != nil {
		t.Fatalf("invalid test JSON: %v\n%s", err, js)
	}
	return obj
}

// ObjOf turns a Go map literal or DTO into an object via JSON.
func ObjOf(t *testing.T, v any) dto.Object {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("cannot marshal test object: %v", err)
	}
	return Obj(t, string(data))
}
