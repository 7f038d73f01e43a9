package fakes

import (
	"fedi_engine/dal"
	"github.com/google/uuid"
	"slices"
	"sort"
	"sync"
	"time"
)

var _ dal.IRepo = (*MemRepo)(nil)

type edge struct{ from, to string }

// MemRepo is an in-memory dal.IRepo for scenario tests.
type MemRepo struct {
	mu              sync.Mutex
	Actors          map[string]*dal.Actor
	Keys            map[string]*dal.ActorKeys
	Notes           map[string]*dal.Note
	Polls           map[string]*dal.Poll
	Followings      map[edge]*dal.Following
	FollowRequests  map[edge]*dal.FollowRequest
	Blockings       map[edge]*dal.Blocking
	Reactions       map[string]*dal.Reaction
	Pins            map[edge]*dal.PinnedNote
	Reports         []*dal.AbuseReport
	Messages        map[string]*dal.DirectMessage
	Instances       map[string]*dal.Instance
	Jobs            map[int64]*dal.DeliveryJob
	nextJobId       int64
	SuspensionCalls int
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		Actors:         map[string]*dal.Actor{},
		Keys:           map[string]*dal.ActorKeys{},
		Notes:          map[string]*dal.Note{},
		Polls:          map[string]*dal.Poll{},
		Followings:     map[edge]*dal.Following{},
		FollowRequests: map[edge]*dal.FollowRequest{},
		Blockings:      map[edge]*dal.Blocking{},
		Reactions:      map[string]*dal.Reaction{},
		Pins:           map[edge]*dal.PinnedNote{},
		Messages:       map[string]*dal.DirectMessage{},
		Instances:      map[string]*dal.Instance{},
		Jobs:           map[int64]*dal.DeliveryJob{},
	}
}

func clone[T any](x *T) *T {
	if x == nil {
		return nil
	}
	res := *x
	return &res
}

func (r *MemRepo) InitUpdateDb() {}

// AddActor seeds an actor (local or remote) and optionally its keys.
func (r *MemRepo) AddActor(actor *dal.Actor, keys *dal.ActorKeys) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Actors[actor.Id] = clone(actor)
	if keys != nil {
		r.Keys[actor.Id] = clone(keys)
	}
}

func (r *MemRepo) AddMessage(dm *dal.DirectMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages[dm.Id] = clone(dm)
}

func (r *MemRepo) GetActorById(id string) (*dal.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.Actors[id]), nil
}

func (r *MemRepo) GetActorByUri(uri string) (*dal.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Actors {
		if a.Uri == uri {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (r *MemRepo) GetActorByKeyId(keyId string) (*dal.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Actors {
		if a.PublicKeyId == keyId {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (r *MemRepo) UpsertRemoteActor(actor *dal.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Actors {
		if a.Uri == actor.Uri {
			actor.Id = a.Id
			actor.IsSuspended = a.IsSuspended
			actor.IsDeleted = a.IsDeleted
			r.Actors[a.Id] = clone(actor)
			return nil
		}
	}
	if actor.Id == "" {
		actor.Id = uuid.NewString()
	}
	r.Actors[actor.Id] = clone(actor)
	return nil
}

func (r *MemRepo) MarkActorDeleted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.Actors[id]; ok {
		a.IsDeleted = true
	}
	return nil
}

func (r *MemRepo) GetActorKeys(actorId string) (*dal.ActorKeys, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.Keys[actorId]), nil
}

func (r *MemRepo) GetNoteById(id string) (*dal.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.Notes[id]), nil
}

func (r *MemRepo) GetNoteByUri(uri string) (*dal.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.Notes {
		if n.Uri != "" && n.Uri == uri {
			return clone(n), nil
		}
	}
	return nil, nil
}

func (r *MemRepo) AddNote(note *dal.Note) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.Notes {
		if note.Uri != "" && n.Uri == note.Uri {
			return false, nil
		}
	}
	r.Notes[note.Id] = clone(note)
	return true, nil
}

func (r *MemRepo) NoteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Notes)
}

func (r *MemRepo) DeleteNote(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Notes, id)
	delete(r.Polls, id)
	return nil
}

func (r *MemRepo) GetPoll(noteId string) (*dal.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := clone(r.Polls[noteId])
	if p != nil {
		p.Votes = slices.Clone(p.Votes)
	}
	return p, nil
}

func (r *MemRepo) AddPoll(poll *dal.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Polls[poll.NoteId] = clone(poll)
	return nil
}

func (r *MemRepo) UpdatePollVotes(noteId string, votes []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Polls[noteId]; ok {
		p.Votes = slices.Clone(votes)
	}
	return nil
}

func (r *MemRepo) IsFollowing(followerId, followeeId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Followings[edge{followerId, followeeId}]
	return ok, nil
}

func (r *MemRepo) AddFollowing(f *dal.Following) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Followings[edge{f.FollowerId, f.FolloweeId}] = clone(f)
	return nil
}

func (r *MemRepo) RemoveFollowing(followerId, followeeId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edge{followerId, followeeId}
	_, ok := r.Followings[key]
	delete(r.Followings, key)
	return ok, nil
}

func (r *MemRepo) GetFollowRequest(followerId, followeeId string) (*dal.FollowRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.FollowRequests[edge{followerId, followeeId}]), nil
}

func (r *MemRepo) AddFollowRequest(fr *dal.FollowRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FollowRequests[edge{fr.FollowerId, fr.FolloweeId}] = clone(fr)
	return nil
}

func (r *MemRepo) RemoveFollowRequest(followerId, followeeId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edge{followerId, followeeId}
	_, ok := r.FollowRequests[key]
	delete(r.FollowRequests, key)
	return ok, nil
}

func (r *MemRepo) GetFollowerInboxes(followeeId string) ([]*dal.FollowerInbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*dal.FollowerInbox, 0)
	for key := range r.Followings {
		if key.to != followeeId {
			continue
		}
		if a, ok := r.Actors[key.from]; ok && !a.IsLocal() && !a.IsDeleted {
			res = append(res, &dal.FollowerInbox{Inbox: a.Inbox, SharedInbox: a.SharedInbox})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Inbox < res[j].Inbox })
	return res, nil
}

func (r *MemRepo) IsBlocking(blockerId, blockeeId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Blockings[edge{blockerId, blockeeId}]
	return ok, nil
}

func (r *MemRepo) AddBlocking(b *dal.Blocking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Blockings[edge{b.BlockerId, b.BlockeeId}] = clone(b)
	return nil
}

func (r *MemRepo) RemoveBlocking(blockerId, blockeeId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edge{blockerId, blockeeId}
	_, ok := r.Blockings[key]
	delete(r.Blockings, key)
	return ok, nil
}

func (r *MemRepo) GetReactionById(id string) (*dal.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.Reactions[id]), nil
}

func (r *MemRepo) AddReaction(reaction *dal.Reaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Reactions {
		if x.NoteId == reaction.NoteId && x.UserId == reaction.UserId {
			return false, nil
		}
	}
	r.Reactions[reaction.Id] = clone(reaction)
	return true, nil
}

func (r *MemRepo) RemoveReaction(noteId, userId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, x := range r.Reactions {
		if x.NoteId == noteId && x.UserId == userId {
			delete(r.Reactions, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemRepo) AddPinnedNote(pin *dal.PinnedNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pins[edge{pin.UserId, pin.NoteId}] = clone(pin)
	return nil
}

func (r *MemRepo) RemovePinnedNote(userId, noteId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edge{userId, noteId}
	_, ok := r.Pins[key]
	delete(r.Pins, key)
	return ok, nil
}

func (r *MemRepo) AddAbuseReport(report *dal.AbuseReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, clone(report))
	return nil
}

func (r *MemRepo) GetDirectMessage(id string) (*dal.DirectMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.Messages[id]), nil
}

func (r *MemRepo) MarkMessageRead(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dm, ok := r.Messages[id]; ok {
		dm.IsRead = true
	}
	return nil
}

func (r *MemRepo) GetInstance(host string) (*dal.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.Instances[host]), nil
}

func (r *MemRepo) AddInstanceIfNotExist(inst *dal.Instance) (*dal.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.Instances[inst.Host]; ok {
		return clone(existing), nil
	}
	stored := clone(inst)
	if stored.SuspensionState == "" {
		stored.SuspensionState = dal.SuspensionNone
	}
	r.Instances[inst.Host] = stored
	return clone(stored), nil
}

func (r *MemRepo) UpdateInstanceResponding(host string, isNotResponding bool, since *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.Instances[host]; ok {
		inst.IsNotResponding = isNotResponding
		inst.NotRespondingSince = clone(since)
	}
	return nil
}

func (r *MemRepo) SetInstanceSuspension(host, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SuspensionCalls++
	if inst, ok := r.Instances[host]; ok {
		inst.SuspensionState = state
	}
	return nil
}

func (r *MemRepo) UpdateInstanceSuspensionIf(host, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SuspensionCalls++
	if inst, ok := r.Instances[host]; ok && inst.SuspensionState == from {
		inst.SuspensionState = to
		return true, nil
	}
	return false, nil
}

func (r *MemRepo) GetSuspendedHosts() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]string, 0)
	for host, inst := range r.Instances {
		if inst.SuspensionState != dal.SuspensionNone {
			res = append(res, host)
		}
	}
	return res, nil
}

func (r *MemRepo) UpdateInstanceMetadata(inst *dal.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.Instances[inst.Host]; ok {
		stored.SigLevel = inst.SigLevel
		stored.SoftwareName = inst.SoftwareName
		stored.SoftwareVersion = inst.SoftwareVersion
		stored.NodeName = inst.NodeName
		stored.OpenRegistrations = inst.OpenRegistrations
		stored.InfoUpdatedAt = clone(inst.InfoUpdatedAt)
	}
	return nil
}

func (r *MemRepo) AddDeliveryJob(job *dal.DeliveryJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextJobId++
	job.Id = r.nextJobId
	r.Jobs[job.Id] = clone(job)
	return nil
}

func (r *MemRepo) GetDueDeliveryJobs(now time.Time, maxCount int) ([]*dal.DeliveryJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*dal.DeliveryJob, 0)
	for _, job := range r.Jobs {
		if !job.NextAttemptAt.After(now) {
			res = append(res, clone(job))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Id < res[j].Id })
	if len(res) > maxCount {
		res = res[:maxCount]
	}
	return res, nil
}

func (r *MemRepo) UpdateDeliveryJobAttempt(id int64, attempts int, nextAttemptAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.Jobs[id]; ok {
		job.Attempts = attempts
		job.NextAttemptAt = nextAttemptAt
	}
	return nil
}

func (r *MemRepo) DeleteDeliveryJob(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Jobs, id)
	return nil
}

func (r *MemRepo) GetDeliveryQueueLength() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Jobs), nil
}

// JobList returns the queued jobs ordered by ID.
func (r *MemRepo) JobList() []*dal.DeliveryJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*dal.DeliveryJob, 0, len(r.Jobs))
	for _, job := range r.Jobs {
		res = append(res, clone(job))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Id < res[j].Id })
	return res
}
