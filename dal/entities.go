package dal

import (
	"time"
)

const (
	SuspensionNone              = "none"
	SuspensionManual            = "manualSuspended"
	SuspensionGone              = "goneSuspended"
	SuspensionAutoNotResponding = "autoSuspendedForNotResponding"
)

const (
	VisibilityPublic    = "public"
	VisibilityHome      = "home"
	VisibilityFollowers = "followers"
	VisibilitySpecified = "specified"
)

// Actor is a local account (Host is empty) or the cached copy of a remote one.
type Actor struct {
	Id            string
	Uri           string // https://mastodon.social/users/alice
	Host          string // mastodon.social
	Username      string // alice
	Name          string
	Inbox         string // https://mastodon.social/users/alice/inbox
	SharedInbox   string // https://mastodon.social/inbox
	FeaturedUrl   string // https://mastodon.social/users/alice/collections/featured
	FollowersUrl  string
	PublicKeyId   string // https://mastodon.social/users/alice#main-key
	PublicKeyPem  string
	IsLocked      bool // Follows need approval
	IsSuspended   bool
	IsDeleted     bool
	LastFetchedAt time.Time
}

func (a *Actor) IsLocal() bool {
	return a.Host == ""
}

// DeliveryInbox is the inbox to use for activities that are not addressed to this actor alone.
func (a *Actor) DeliveryInbox() (inbox string, isShared bool) {
	if a.SharedInbox != "" {
		return a.SharedInbox, true
	}
	return a.Inbox, false
}

type ActorKeys struct {
	ActorId        string
	RsaPrivKey     string // PEM, possibly encrypted
	Ed25519PrivKey string // PEM (PKCS8); empty if the actor only has the legacy key
}

type Note struct {
	Id             string
	Uri            string // Empty for local notes
	Url            string
	AuthorId       string
	Content        string
	Cw             string
	Visibility     string
	VisibleUserIds []string
	MentionIds     []string
	ReplyId        string
	ReplyUserId    string
	RenoteId       string
	QuoteId        string
	HasPoll        bool
	CreatedAt      time.Time
}

type Poll struct {
	NoteId    string
	Choices   []string
	Votes     []int
	Multiple  bool
	ExpiresAt *time.Time
}

type Following struct {
	FollowerId string
	FolloweeId string
	CreatedAt  time.Time
}

type FollowRequest struct {
	RequestId  string // ID of the Follow activity; echoed back in Accept/Reject
	FollowerId string
	FolloweeId string
	CreatedAt  time.Time
}

type Blocking struct {
	BlockerId string
	BlockeeId string
	CreatedAt time.Time
}

type Reaction struct {
	Id        string
	NoteId    string
	UserId    string
	Reaction  string
	CreatedAt time.Time
}

type PinnedNote struct {
	UserId    string
	NoteId    string
	CreatedAt time.Time
}

type AbuseReport struct {
	Id           string
	TargetUserId string
	ReporterId   string
	Comment      string
	CreatedAt    time.Time
}

type DirectMessage struct {
	Id          string
	SenderId    string
	RecipientId string
	Text        string
	IsRead      bool
	CreatedAt   time.Time
}

// FollowerInbox is where to deliver activities for one remote follower.
type FollowerInbox struct {
	Inbox       string
	SharedInbox string
}

type Instance struct {
	Host               string
	SuspensionState    string
	IsNotResponding    bool
	NotRespondingSince *time.Time
	SigLevel           string
	SoftwareName       string
	SoftwareVersion    string
	NodeName           string
	OpenRegistrations  bool
	InfoUpdatedAt      *time.Time
	FirstRetrievedAt   time.Time
}

type DeliveryJob struct {
	Id            int64
	To            string // Destination inbox
	SenderId      string // Local actor that signs the request
	Content       string // Serialized activity
	Digest        string // Precomputed Digest header value; reused verbatim on every attempt
	IsSharedInbox bool
	Attempts      int
	NextAttemptAt time.Time
	CreatedAt     time.Time
}
