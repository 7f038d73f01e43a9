package dal

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fedi_engine/shared"
	"fmt"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"sync"
	"time"
)

const schemaVer = 1

//go:embed scripts/*
var scripts embed.FS

type IRepo interface {
	InitUpdateDb()

	GetActorById(id string) (*Actor, error)
	GetActorByUri(uri string) (*Actor, error)
	GetActorByKeyId(keyId string) (*Actor, error)
	UpsertRemoteActor(actor *Actor) error
	MarkActorDeleted(id string) error
	GetActorKeys(actorId string) (*ActorKeys, error)

	GetNoteById(id string) (*Note, error)
	GetNoteByUri(uri string) (*Note, error)
	AddNote(note *Note) (isNew bool, err error)
	DeleteNote(id string) error
	GetPoll(noteId string) (*Poll, error)
	AddPoll(poll *Poll) error
	UpdatePollVotes(noteId string, votes []int) error

	IsFollowing(followerId, followeeId string) (bool, error)
	AddFollowing(f *Following) error
	RemoveFollowing(followerId, followeeId string) (removed bool, err error)
	GetFollowRequest(followerId, followeeId string) (*FollowRequest, error)
	AddFollowRequest(fr *FollowRequest) error
	RemoveFollowRequest(followerId, followeeId string) (removed bool, err error)
	GetFollowerInboxes(followeeId string) ([]*FollowerInbox, error)

	IsBlocking(blockerId, blockeeId string) (bool, error)
	AddBlocking(b *Blocking) error
	RemoveBlocking(blockerId, blockeeId string) (removed bool, err error)

	GetReactionById(id string) (*Reaction, error)
	AddReaction(r *Reaction) (isNew bool, err error)
	RemoveReaction(noteId, userId string) (removed bool, err error)

	AddPinnedNote(pin *PinnedNote) error
	RemovePinnedNote(userId, noteId string) (removed bool, err error)

	AddAbuseReport(report *AbuseReport) error
	GetDirectMessage(id string) (*DirectMessage, error)
	MarkMessageRead(id string) error

	GetInstance(host string) (*Instance, error)
	AddInstanceIfNotExist(inst *Instance) (*Instance, error)
	UpdateInstanceResponding(host string, isNotResponding bool, since *time.Time) error
	SetInstanceSuspension(host, state string) error
	UpdateInstanceSuspensionIf(host, from, to string) (updated bool, err error)
	GetSuspendedHosts() ([]string, error)
	UpdateInstanceMetadata(inst *Instance) error

	AddDeliveryJob(job *DeliveryJob) error
	GetDueDeliveryJobs(now time.Time, maxCount int) ([]*DeliveryJob, error)
	UpdateDeliveryJobAttempt(id int64, attempts int, nextAttemptAt time.Time) error
	DeleteDeliveryJob(id int64) error
	GetDeliveryQueueLength() (int, error)
}

type Repo struct {
	cfg    *shared.Config
	logger shared.ILogger
	db     *sql.DB
	muDb   sync.RWMutex
}

func NewRepo(cfg *shared.Config, logger shared.ILogger) IRepo {

	var err error
	var db *sql.DB

	// https://phiresky.github.io/blog/2020/sqlite-performance-tuning/
	// https://github.com/mattn/go-sqlite3/issues/1022#issuecomment-1067353980
	// _synchronous=1 is "normal"
	cstr := "file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	db, err = sql.Open("sqlite3", fmt.Sprintf(cstr, cfg.DbFile))
	if err != nil {
		logger.Errorf("Failed to open/create DB file: %s: %v", cfg.DbFile, err)
		panic(err)
	}

	return NewRepoWithDb(cfg, logger, db)
}

// NewRepoWithDb wraps an already opened database.
func NewRepoWithDb(cfg *shared.Config, logger shared.ILogger, db *sql.DB) IRepo {
	return &Repo{
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
}

func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		// SQLITE_CONSTRAINT_UNIQUE or SQLITE_CONSTRAINT_PRIMARYKEY
		return sqliteErr.Code == 19 && (sqliteErr.ExtendedCode == 2067 || sqliteErr.ExtendedCode == 1555)
	}
	return false
}

func (repo *Repo) InitUpdateDb() {

	dbVer := 0
	sysParamsExists := false
	var err error
	var rows *sql.Rows

	rows, err = repo.db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name='sys_params'")
	if err != nil {
		repo.logger.Errorf("Failed to check if 'sys_params' table exists: %v", err)
		panic(err)
	}
	for rows.Next() {
		sysParamsExists = true
	}
	_ = rows.Close()
	if !sysParamsExists {
		repo.logger.Printf("Database appears to be empty; current schema version is %d", schemaVer)
	} else {
		row := repo.db.QueryRow("SELECT val FROM sys_params WHERE name='schema_ver'")
		if err = row.Scan(&dbVer); err != nil {
			repo.logger.Errorf("Failed to query schema version: %v", err)
			panic(err)
		}
		repo.logger.Printf("Database is at version %d; current schema version is %d", dbVer, schemaVer)
	}
	for i := dbVer; i < schemaVer; i += 1 {
		nextVer := i + 1
		fn := fmt.Sprintf("scripts/create-%02d.sql", nextVer)
		repo.logger.Printf("Running %s", fn)
		var sqlBytes []byte
		if sqlBytes, err = scripts.ReadFile(fn); err != nil {
			repo.logger.Errorf("Failed to read init script %s: %v", fn, err)
			panic(err)
		}
		if _, err = repo.db.Exec(string(sqlBytes)); err != nil {
			repo.logger.Errorf("Failed to execute init script %s: %v", fn, err)
			panic(err)
		}
		_, err = repo.db.Exec("UPDATE sys_params SET val=? WHERE name='schema_ver'", nextVer)
		if err != nil {
			repo.logger.Errorf("Failed to update schema_ver to %d: %v", nextVer, err)
			panic(err)
		}
	}

	if dbVer == 0 {
		repo.mustAddSystemActor()
	}
}

func (repo *Repo) mustAddSystemActor() {

	sa := repo.cfg.SystemActor
	if sa == nil {
		repo.logger.Warn("No system actor configured; signed fetches will fail")
		return
	}
	idb := shared.IdBuilder{Host: repo.cfg.Host}

	_, err := repo.db.Exec(`INSERT INTO actors (id, uri, username, name, inbox, shared_inbox, featured_url,
			followers_url, public_key_id, public_key_pem, is_locked, last_fetched_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		sa.User, idb.UserUrl(sa.User), sa.User, sa.User, idb.UserInbox(sa.User), idb.SharedInbox(),
		idb.UserFeatured(sa.User), idb.UserFollowers(sa.User), idb.UserKeyId(sa.User), sa.PubKey, sa.Published)
	if err == nil {
		_, err = repo.db.Exec(`INSERT INTO actor_keys (actor_id, rsa_privkey, ed25519_privkey) VALUES(?, ?, ?)`,
			sa.User, sa.PrivKey, sa.Ed25519PrivKey)
	}
	if err != nil {
		repo.logger.Errorf("Failed to add system actor '%s': %v", sa.User, err)
		panic(err)
	}
}

const selectActor = `SELECT id, uri, host, username, name, inbox, shared_inbox, featured_url, followers_url,
	public_key_id, public_key_pem, is_locked, is_suspended, is_deleted, last_fetched_at FROM actors`

func scanActor(row interface{ Scan(dest ...any) error }) (*Actor, error) {
	var res Actor
	var lastFetched *time.Time
	err := row.Scan(&res.Id, &res.Uri, &res.Host, &res.Username, &res.Name, &res.Inbox, &res.SharedInbox,
		&res.FeaturedUrl, &res.FollowersUrl, &res.PublicKeyId, &res.PublicKeyPem,
		&res.IsLocked, &res.IsSuspended, &res.IsDeleted, &lastFetched)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lastFetched != nil {
		res.LastFetchedAt = *lastFetched
	}
	return &res, nil
}

func (repo *Repo) GetActorById(id string) (*Actor, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return scanActor(repo.db.QueryRow(selectActor+" WHERE id=?", id))
}

func (repo *Repo) GetActorByUri(uri string) (*Actor, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return scanActor(repo.db.QueryRow(selectActor+" WHERE uri=?", uri))
}

func (repo *Repo) GetActorByKeyId(keyId string) (*Actor, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return scanActor(repo.db.QueryRow(selectActor+" WHERE public_key_id=? LIMIT 1", keyId))
}

// UpsertRemoteActor inserts the actor or overwrites the cached copy with the same URI.
// On return, actor.Id holds the stored row's ID.
func (repo *Repo) UpsertRemoteActor(actor *Actor) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	if actor.Id == "" {
		actor.Id = uuid.NewString()
	}
	row := repo.db.QueryRow(`INSERT INTO actors (id, uri, host, username, name, inbox, shared_inbox, featured_url,
			followers_url, public_key_id, public_key_pem, is_locked, is_suspended, is_deleted, last_fetched_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET username=excluded.username, name=excluded.name, inbox=excluded.inbox,
			shared_inbox=excluded.shared_inbox, featured_url=excluded.featured_url,
			followers_url=excluded.followers_url, public_key_id=excluded.public_key_id,
			public_key_pem=excluded.public_key_pem, is_locked=excluded.is_locked,
			last_fetched_at=excluded.last_fetched_at
		RETURNING id`,
		actor.Id, actor.Uri, actor.Host, actor.Username, actor.Name, actor.Inbox, actor.SharedInbox,
		actor.FeaturedUrl, actor.FollowersUrl, actor.PublicKeyId, actor.PublicKeyPem,
		actor.IsLocked, actor.IsSuspended, actor.IsDeleted, actor.LastFetchedAt)
	return row.Scan(&actor.Id)
}

func (repo *Repo) MarkActorDeleted(id string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE actors SET is_deleted=1 WHERE id=?`, id)
	return err
}

func (repo *Repo) GetActorKeys(actorId string) (*ActorKeys, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT actor_id, rsa_privkey, ed25519_privkey FROM actor_keys WHERE actor_id=?`, actorId)
	var res ActorKeys
	if err := row.Scan(&res.ActorId, &res.RsaPrivKey, &res.Ed25519PrivKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

const selectNote = `SELECT id, uri, url, author_id, content, cw, visibility, visible_user_ids, mention_ids,
	reply_id, reply_user_id, renote_id, quote_id, has_poll, created_at FROM notes`

func scanNote(row interface{ Scan(dest ...any) error }) (*Note, error) {
	var res Note
	var visibleUserIds, mentionIds string
	err := row.Scan(&res.Id, &res.Uri, &res.Url, &res.AuthorId, &res.Content, &res.Cw, &res.Visibility,
		&visibleUserIds, &mentionIds, &res.ReplyId, &res.ReplyUserId, &res.RenoteId, &res.QuoteId,
		&res.HasPoll, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err = json.Unmarshal([]byte(visibleUserIds), &res.VisibleUserIds); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(mentionIds), &res.MentionIds); err != nil {
		return nil, err
	}
	return &res, nil
}

func mustJsonList[T any](items []T) string {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func (repo *Repo) GetNoteById(id string) (*Note, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return scanNote(repo.db.QueryRow(selectNote+" WHERE id=?", id))
}

func (repo *Repo) GetNoteByUri(uri string) (*Note, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return scanNote(repo.db.QueryRow(selectNote+" WHERE uri=?", uri))
}

// AddNote stores a note. A note whose URI is already stored is not an error; isNew is false then.
func (repo *Repo) AddNote(note *Note) (isNew bool, err error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err = repo.db.Exec(`INSERT INTO notes (id, uri, url, author_id, content, cw, visibility, visible_user_ids,
			mention_ids, reply_id, reply_user_id, renote_id, quote_id, has_poll, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.Id, note.Uri, note.Url, note.AuthorId, note.Content, note.Cw, note.Visibility,
		mustJsonList(note.VisibleUserIds), mustJsonList(note.MentionIds), note.ReplyId, note.ReplyUserId,
		note.RenoteId, note.QuoteId, note.HasPoll, note.CreatedAt)
	if err == nil {
		return true, nil
	}
	// Duplicate key: note with this URI already exists
	if isDuplicateKey(err) {
		return false, nil
	}
	return false, err
}

func (repo *Repo) DeleteNote(id string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	if _, err := repo.db.Exec(`DELETE FROM notes WHERE id=?`, id); err != nil {
		return err
	}
	if _, err := repo.db.Exec(`DELETE FROM polls WHERE note_id=?`, id); err != nil {
		return err
	}
	_, err := repo.db.Exec(`DELETE FROM reactions WHERE note_id=?`, id)
	return err
}

func (repo *Repo) GetPoll(noteId string) (*Poll, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT note_id, choices, votes, multiple, expires_at FROM polls WHERE note_id=?`, noteId)
	var res Poll
	var choices, votes string
	if err := row.Scan(&res.NoteId, &choices, &votes, &res.Multiple, &res.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(choices), &res.Choices); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(votes), &res.Votes); err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddPoll(poll *Poll) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO polls (note_id, choices, votes, multiple, expires_at) VALUES(?, ?, ?, ?, ?)`,
		poll.NoteId, mustJsonList(poll.Choices), mustJsonList(poll.Votes), poll.Multiple, poll.ExpiresAt)
	return err
}

func (repo *Repo) UpdatePollVotes(noteId string, votes []int) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE polls SET votes=? WHERE note_id=?`, mustJsonList(votes), noteId)
	return err
}

func (repo *Repo) exists(query string, args ...any) (bool, error) {
	row := repo.db.QueryRow(query, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count != 0, nil
}

func (repo *Repo) deleteRows(query string, args ...any) (bool, error) {
	res, err := repo.db.Exec(query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected != 0, nil
}

func (repo *Repo) IsFollowing(followerId, followeeId string) (bool, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return repo.exists(`SELECT COUNT(*) FROM followings WHERE follower_id=? AND followee_id=?`,
		followerId, followeeId)
}

func (repo *Repo) AddFollowing(f *Following) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO followings (follower_id, followee_id, created_at) VALUES(?, ?, ?)
		ON CONFLICT DO NOTHING`, f.FollowerId, f.FolloweeId, f.CreatedAt)
	return err
}

func (repo *Repo) RemoveFollowing(followerId, followeeId string) (bool, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	return repo.deleteRows(`DELETE FROM followings WHERE follower_id=? AND followee_id=?`, followerId, followeeId)
}

func (repo *Repo) GetFollowRequest(followerId, followeeId string) (*FollowRequest, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT request_id, follower_id, followee_id, created_at FROM follow_requests
		WHERE follower_id=? AND followee_id=?`, followerId, followeeId)
	var res FollowRequest
	if err := row.Scan(&res.RequestId, &res.FollowerId, &res.FolloweeId, &res.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddFollowRequest(fr *FollowRequest) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO follow_requests (follower_id, followee_id, request_id, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT DO UPDATE SET request_id=excluded.request_id`,
		fr.FollowerId, fr.FolloweeId, fr.RequestId, fr.CreatedAt)
	return err
}

func (repo *Repo) RemoveFollowRequest(followerId, followeeId string) (bool, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	return repo.deleteRows(`DELETE FROM follow_requests WHERE follower_id=? AND followee_id=?`,
		followerId, followeeId)
}

func (repo *Repo) GetFollowerInboxes(followeeId string) ([]*FollowerInbox, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT actors.inbox, actors.shared_inbox FROM followings
		JOIN actors ON followings.follower_id=actors.id AND actors.host<>''
		WHERE followings.followee_id=? AND actors.is_deleted=0`, followeeId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]*FollowerInbox, 0)
	for rows.Next() {
		fi := FollowerInbox{}
		if err = rows.Scan(&fi.Inbox, &fi.SharedInbox); err != nil {
			return nil, err
		}
		res = append(res, &fi)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (repo *Repo) IsBlocking(blockerId, blockeeId string) (bool, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return repo.exists(`SELECT COUNT(*) FROM blockings WHERE blocker_id=? AND blockee_id=?`, blockerId, blockeeId)
}

func (repo *Repo) AddBlocking(b *Blocking) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO blockings (blocker_id, blockee_id, created_at) VALUES(?, ?, ?)
		ON CONFLICT DO NOTHING`, b.BlockerId, b.BlockeeId, b.CreatedAt)
	return err
}

func (repo *Repo) RemoveBlocking(blockerId, blockeeId string) (bool, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	return repo.deleteRows(`DELETE FROM blockings WHERE blocker_id=? AND blockee_id=?`, blockerId, blockeeId)
}

func (repo *Repo) GetReactionById(id string) (*Reaction, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT id, note_id, user_id, reaction, created_at FROM reactions WHERE id=?`, id)
	var res Reaction
	if err := row.Scan(&res.Id, &res.NoteId, &res.UserId, &res.Reaction, &res.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// AddReaction records a reaction. One user can react to a note only once; a second reaction is reported
// through isNew=false, not as an error.
func (repo *Repo) AddReaction(r *Reaction) (isNew bool, err error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err = repo.db.Exec(`INSERT INTO reactions (id, note_id, user_id, reaction, created_at) VALUES(?, ?, ?, ?, ?)`,
		r.Id, r.NoteId, r.UserId, r.Reaction, r.CreatedAt)
	if err == nil {
		return true, nil
	}
	if isDuplicateKey(err) {
		return false, nil
	}
	return false, err
}

func (repo *Repo) RemoveReaction(noteId, userId string) (bool, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	return repo.deleteRows(`DELETE FROM reactions WHERE note_id=? AND user_id=?`, noteId, userId)
}

func (repo *Repo) AddPinnedNote(pin *PinnedNote) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO pinned_notes (user_id, note_id, created_at) VALUES(?, ?, ?)
		ON CONFLICT DO NOTHING`, pin.UserId, pin.NoteId, pin.CreatedAt)
	return err
}

func (repo *Repo) RemovePinnedNote(userId, noteId string) (bool, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	return repo.deleteRows(`DELETE FROM pinned_notes WHERE user_id=? AND note_id=?`, userId, noteId)
}

func (repo *Repo) AddAbuseReport(report *AbuseReport) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO abuse_reports (id, target_user_id, reporter_id, comment, created_at)
		VALUES(?, ?, ?, ?, ?)`,
		report.Id, report.TargetUserId, report.ReporterId, report.Comment, report.CreatedAt)
	return err
}

func (repo *Repo) GetDirectMessage(id string) (*DirectMessage, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT id, sender_id, recipient_id, text, is_read, created_at
		FROM direct_messages WHERE id=?`, id)
	var res DirectMessage
	if err := row.Scan(&res.Id, &res.SenderId, &res.RecipientId, &res.Text, &res.IsRead, &res.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) MarkMessageRead(id string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE direct_messages SET is_read=1 WHERE id=?`, id)
	return err
}

const selectInstance = `SELECT host, suspension_state, is_not_responding, not_responding_since, sig_level,
	software_name, software_version, node_name, open_registrations, info_updated_at, first_retrieved_at
	FROM instances`

func scanInstance(row interface{ Scan(dest ...any) error }) (*Instance, error) {
	var res Instance
	err := row.Scan(&res.Host, &res.SuspensionState, &res.IsNotResponding, &res.NotRespondingSince, &res.SigLevel,
		&res.SoftwareName, &res.SoftwareVersion, &res.NodeName, &res.OpenRegistrations, &res.InfoUpdatedAt,
		&res.FirstRetrievedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) GetInstance(host string) (*Instance, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	return scanInstance(repo.db.QueryRow(selectInstance+" WHERE host=?", host))
}

// AddInstanceIfNotExist registers a host on first contact and returns the stored row either way.
func (repo *Repo) AddInstanceIfNotExist(inst *Instance) (*Instance, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	if inst.SuspensionState == "" {
		inst.SuspensionState = SuspensionNone
	}
	_, err := repo.db.Exec(`INSERT INTO instances (host, suspension_state, sig_level, first_retrieved_at)
		VALUES(?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		inst.Host, inst.SuspensionState, inst.SigLevel, inst.FirstRetrievedAt)
	if err != nil {
		return nil, err
	}
	return scanInstance(repo.db.QueryRow(selectInstance+" WHERE host=?", inst.Host))
}

func (repo *Repo) UpdateInstanceResponding(host string, isNotResponding bool, since *time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE instances SET is_not_responding=?, not_responding_since=? WHERE host=?`,
		isNotResponding, since, host)
	return err
}

func (repo *Repo) SetInstanceSuspension(host, state string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE instances SET suspension_state=? WHERE host=?`, state, host)
	return err
}

// UpdateInstanceSuspensionIf changes the suspension state only if it currently equals from.
func (repo *Repo) UpdateInstanceSuspensionIf(host, from, to string) (bool, error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	res, err := repo.db.Exec(`UPDATE instances SET suspension_state=? WHERE host=? AND suspension_state=?`,
		to, host, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (repo *Repo) GetSuspendedHosts() ([]string, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT host FROM instances WHERE suspension_state<>?`, SuspensionNone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]string, 0)
	for rows.Next() {
		var host string
		if err = rows.Scan(&host); err != nil {
			return nil, err
		}
		res = append(res, host)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (repo *Repo) UpdateInstanceMetadata(inst *Instance) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE instances SET sig_level=?, software_name=?, software_version=?, node_name=?,
		open_registrations=?, info_updated_at=? WHERE host=?`,
		inst.SigLevel, inst.SoftwareName, inst.SoftwareVersion, inst.NodeName, inst.OpenRegistrations,
		inst.InfoUpdatedAt, inst.Host)
	return err
}

func (repo *Repo) AddDeliveryJob(job *DeliveryJob) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	res, err := repo.db.Exec(`INSERT INTO delivery_queue (to_inbox, sender_id, content, digest, is_shared_inbox,
			attempts, next_attempt_at, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		job.To, job.SenderId, job.Content, job.Digest, job.IsSharedInbox, job.Attempts, job.NextAttemptAt,
		job.CreatedAt)
	if err != nil {
		return err
	}
	job.Id, err = res.LastInsertId()
	return err
}

func (repo *Repo) GetDueDeliveryJobs(now time.Time, maxCount int) ([]*DeliveryJob, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT id, to_inbox, sender_id, content, digest, is_shared_inbox, attempts,
			next_attempt_at, created_at
		FROM delivery_queue WHERE next_attempt_at<=? ORDER BY next_attempt_at ASC, id ASC LIMIT ?`, now, maxCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]*DeliveryJob, 0, maxCount)
	for rows.Next() {
		job := DeliveryJob{}
		err = rows.Scan(&job.Id, &job.To, &job.SenderId, &job.Content, &job.Digest, &job.IsSharedInbox,
			&job.Attempts, &job.NextAttemptAt, &job.CreatedAt)
		if err != nil {
			return nil, err
		}
		res = append(res, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (repo *Repo) UpdateDeliveryJobAttempt(id int64, attempts int, nextAttemptAt time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE delivery_queue SET attempts=?, next_attempt_at=? WHERE id=?`,
		attempts, nextAttemptAt, id)
	return err
}

func (repo *Repo) DeleteDeliveryJob(id int64) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`DELETE FROM delivery_queue WHERE id=?`, id)
	return err
}

func (repo *Repo) GetDeliveryQueueLength() (int, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT COUNT(*) FROM delivery_queue`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
