package shared

import (
	"fmt"
	"net/url"
	"strings"
)

const ActivityStreamsNs = "https://www.w3.org/ns/activitystreams"
const ActivityPublic = "https://www.w3.org/ns/activitystreams#Public"

// Path segments of locally served ActivityPub resources.
const (
	LocalNotes     = "notes"
	LocalUsers     = "users"
	LocalQuestions = "questions"
	LocalLike      = "like"
	LocalLikes     = "likes"
	LocalFollows   = "follows"
	LocalActivity  = "activity"
)

type IdBuilder struct {
	Host string
}

// LocalRef is a local URL split into resource type, id and whatever path follows the id.
type LocalRef struct {
	Type string
	Id   string
	Rest string
}

func (idb *IdBuilder) SiteUrl() string {
	return fmt.Sprintf("https://%s", idb.Host)
}

func (idb *IdBuilder) SharedInbox() string {
	return fmt.Sprintf("https://%s/inbox", idb.Host)
}

func (idb *IdBuilder) UserUrl(user string) string {
	return fmt.Sprintf("https://%s/users/%s", idb.Host, user)
}

func (idb *IdBuilder) UserKeyId(user string) string {
	return fmt.Sprintf("https://%s/users/%s#main-key", idb.Host, user)
}

func (idb *IdBuilder) UserEd25519KeyId(user string) string {
	return fmt.Sprintf("https://%s/users/%s#ed25519-key", idb.Host, user)
}

func (idb *IdBuilder) UserInbox(user string) string {
	return fmt.Sprintf("https://%s/users/%s/inbox", idb.Host, user)
}

func (idb *IdBuilder) UserOutbox(user string) string {
	return fmt.Sprintf("https://%s/users/%s/outbox", idb.Host, user)
}

func (idb *IdBuilder) UserFollowing(user string) string {
	return fmt.Sprintf("https://%s/users/%s/following", idb.Host, user)
}

func (idb *IdBuilder) UserFollowers(user string) string {
	return fmt.Sprintf("https://%s/users/%s/followers", idb.Host, user)
}

func (idb *IdBuilder) UserFeatured(user string) string {
	return fmt.Sprintf("https://%s/users/%s/collections/featured", idb.Host, user)
}

func (idb *IdBuilder) NoteUrl(id string) string {
	return fmt.Sprintf("https://%s/notes/%s", idb.Host, id)
}

func (idb *IdBuilder) NoteActivity(id string) string {
	return fmt.Sprintf("https://%s/notes/%s/activity", idb.Host, id)
}

func (idb *IdBuilder) QuestionUrl(id string) string {
	return fmt.Sprintf("https://%s/questions/%s", idb.Host, id)
}

func (idb *IdBuilder) LikeUrl(id string) string {
	return fmt.Sprintf("https://%s/like/%s", idb.Host, id)
}

func (idb *IdBuilder) FollowUrl(followerId, followeeId string) string {
	return fmt.Sprintf("https://%s/follows/%s/%s", idb.Host, followerId, followeeId)
}

func (idb *IdBuilder) ActivityUrl(id string) string {
	return fmt.Sprintf("https://%s/activities/%s", idb.Host, id)
}

func (idb *IdBuilder) IsLocal(uri string) bool {
	return HostOf(uri) == NormalizeHost(idb.Host)
}

// ParseLocal splits a URL on this host into its resource parts.
func (idb *IdBuilder) ParseLocal(uri string) (*LocalRef, bool) {
	parsedUrl, err := url.Parse(uri)
	if err != nil || NormalizeHost(parsedUrl.Host) != NormalizeHost(idb.Host) {
		return nil, false
	}
	parts := strings.Split(strings.TrimPrefix(parsedUrl.Path, "/"), "/")
	res := LocalRef{Type: parts[0]}
	if len(parts) > 1 {
		res.Id = parts[1]
	}
	if len(parts) > 2 {
		res.Rest = strings.Join(parts[2:], "/")
	}
	return &res, true
}
