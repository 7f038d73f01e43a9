package logic

import (
	"fedi_engine/dal"
	"fedi_engine/shared"
	"slices"
)

// Audience is who a remote note or boost is addressed to.
type Audience struct {
	Visibility     string
	VisibleUserIds []string
	MentionedIds   []string
}

func isPublicAudience(id string) bool {
	return id == shared.ActivityPublic || id == "as:Public" || id == "Public"
}

func isFollowersAudience(id string, actor *dal.Actor) bool {
	return id != "" && (id == actor.FollowersUrl || id == actor.Uri+"/followers")
}

// ParseAudience derives visibility from to/cc. Addressed users are looked up among actors we already know;
// unknown ones are dropped rather than fetched.
func ParseAudience(repo dal.IRepo, idb shared.IdBuilder, actor *dal.Actor, to, cc []string) (*Audience, error) {

	toPublic, ccPublic, followers := false, false, false
	var others []string
	classify := func(ids []string, isTo bool) {
		for _, id := range ids {
			switch {
			case isPublicAudience(id):
				if isTo {
					toPublic = true
				} else {
					ccPublic = true
				}
			case isFollowersAudience(id, actor):
				followers = true
			default:
				if !slices.Contains(others, id) {
					others = append(others, id)
				}
			}
		}
	}
	classify(to, true)
	classify(cc, false)

	res := Audience{}
	for _, uri := range others {
		user, err := lookupAddressee(repo, idb, uri)
		if err != nil {
			return nil, err
		}
		if user != nil && !slices.Contains(res.MentionedIds, user.Id) {
			res.MentionedIds = append(res.MentionedIds, user.Id)
		}
	}

	switch {
	case toPublic:
		res.Visibility = dal.VisibilityPublic
	case ccPublic:
		res.Visibility = dal.VisibilityHome
	case followers:
		res.Visibility = dal.VisibilityFollowers
	default:
		res.Visibility = dal.VisibilitySpecified
		res.VisibleUserIds = res.MentionedIds
	}
	return &res, nil
}

// Our own users are stored without a URI
func lookupAddressee(repo dal.IRepo, idb shared.IdBuilder, uri string) (*dal.Actor, error) {
	if ref, ok := idb.ParseLocal(uri); ok {
		if ref.Type != shared.LocalUsers || ref.Id == "" || ref.Rest != "" {
			return nil, nil
		}
		user, err := repo.GetActorById(ref.Id)
		if err != nil || user == nil || !user.IsLocal() {
			return nil, err
		}
		return user, nil
	}
	return repo.GetActorByUri(uri)
}

// IsVisibleFor tells if the actor may see the note.
func IsVisibleFor(repo dal.IRepo, note *dal.Note, actorId string) (bool, error) {
	if note.AuthorId == actorId {
		return true, nil
	}
	switch note.Visibility {
	case dal.VisibilityPublic, dal.VisibilityHome:
		return true, nil
	case dal.VisibilityFollowers:
		if slices.Contains(note.MentionIds, actorId) || slices.Contains(note.VisibleUserIds, actorId) {
			return true, nil
		}
		return repo.IsFollowing(actorId, note.AuthorId)
	default:
		return slices.Contains(note.VisibleUserIds, actorId) || slices.Contains(note.MentionIds, actorId), nil
	}
}
