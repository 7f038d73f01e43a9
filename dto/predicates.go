package dto

import "slices"

const (
	TypeCreate   = "Create"
	TypeUpdate   = "Update"
	TypeDelete   = "Delete"
	TypeFollow   = "Follow"
	TypeAccept   = "Accept"
	TypeReject   = "Reject"
	TypeAdd      = "Add"
	TypeRemove   = "Remove"
	TypeAnnounce = "Announce"
	TypeLike     = "Like"
	TypeUndo     = "Undo"
	TypeBlock    = "Block"
	TypeFlag     = "Flag"
	TypeRead     = "Read"

	TypeNote              = "Note"
	TypeQuestion          = "Question"
	TypePerson            = "Person"
	TypeTombstone         = "Tombstone"
	TypeCollection        = "Collection"
	TypeOrderedCollection = "OrderedCollection"
	TypeLink              = "Link"
)

var postTypes = []string{"Note", "Question", "Article", "Audio", "Document", "Image", "Page", "Video", "Event"}
var actorTypes = []string{"Application", "Group", "Organization", "Person", "Service"}

func IsPost(obj Object) bool {
	return slices.Contains(postTypes, obj.Type())
}

func IsPostType(typ string) bool {
	return slices.Contains(postTypes, typ)
}

func IsActor(obj Object) bool {
	return slices.Contains(actorTypes, obj.Type())
}

func IsActorType(typ string) bool {
	return slices.Contains(actorTypes, typ)
}

func IsTombstone(obj Object) bool {
	return obj.Type() == TypeTombstone
}

func IsQuestion(obj Object) bool {
	return obj.Type() == TypeQuestion
}

func IsCollection(obj Object) bool {
	return obj.Type() == TypeCollection
}

func IsOrderedCollection(obj Object) bool {
	return obj.Type() == TypeOrderedCollection
}

func IsCollectionOrOrderedCollection(obj Object) bool {
	return IsCollection(obj) || IsOrderedCollection(obj)
}

// CollectionItems returns the inline items of a collection, from "orderedItems" or "items".
func CollectionItems(obj Object) []Ref {
	if IsOrderedCollection(obj) {
		if refs := obj.Refs("orderedItems"); len(refs) != 0 {
			return refs
		}
	}
	return obj.Refs("items")
}
