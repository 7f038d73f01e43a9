package dto

import (
	"fedi_engine/shared"
	"fmt"
	"time"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindCreate
	KindUpdate
	KindDelete
	KindFollow
	KindAccept
	KindReject
	KindAdd
	KindRemove
	KindAnnounce
	KindLike
	KindUndo
	KindBlock
	KindFlag
	KindRead
)

// Activity is the closed set of verbs the inbox understands. Use a type switch over the concrete
// pointer types; anything else arrives as *Unknown.
type Activity interface {
	Kind() Kind
	Base() *ActivityBase
	isActivity()
}

// ActivityBase holds the fields every verb shares.
type ActivityBase struct {
	Id     string
	Type   string
	Actor  string
	To     []string
	Cc     []string
	Object Ref
	Raw    Object
}

func (b *ActivityBase) Base() *ActivityBase { return b }
func (b *ActivityBase) isActivity()         {}

type Create struct{ ActivityBase }
type Update struct{ ActivityBase }
type Delete struct{ ActivityBase }
type Follow struct{ ActivityBase }
type Accept struct{ ActivityBase }
type Reject struct{ ActivityBase }
type Undo struct{ ActivityBase }
type Block struct{ ActivityBase }
type Read struct{ ActivityBase }

type Add struct {
	ActivityBase
	Target string
}

type Remove struct {
	ActivityBase
	Target string
}

type Announce struct {
	ActivityBase
	Published *time.Time
}

type Like struct {
	ActivityBase
	Reaction string
}

type Flag struct {
	ActivityBase
	Content    string
	ObjectUris []string
}

type Unknown struct{ ActivityBase }

func (*Create) Kind() Kind   { return KindCreate }
func (*Update) Kind() Kind   { return KindUpdate }
func (*Delete) Kind() Kind   { return KindDelete }
func (*Follow) Kind() Kind   { return KindFollow }
func (*Accept) Kind() Kind   { return KindAccept }
func (*Reject) Kind() Kind   { return KindReject }
func (*Add) Kind() Kind      { return KindAdd }
func (*Remove) Kind() Kind   { return KindRemove }
func (*Announce) Kind() Kind { return KindAnnounce }
func (*Like) Kind() Kind     { return KindLike }
func (*Undo) Kind() Kind     { return KindUndo }
func (*Block) Kind() Kind    { return KindBlock }
func (*Flag) Kind() Kind     { return KindFlag }
func (*Read) Kind() Kind     { return KindRead }
func (*Unknown) Kind() Kind  { return KindUnknown }

const DefaultReaction = "❤"

// ParseActivity validates an untrusted object into one of the Activity variants.
func ParseActivity(obj Object) (Activity, error) {
	base, err := parseBase(obj)
	if err != nil {
		return nil, err
	}
	switch base.Type {
	case TypeCreate:
		return asActivity(NewCreate(base))
	case TypeUpdate:
		return asActivity(NewUpdate(base))
	case TypeDelete:
		return asActivity(NewDelete(base))
	case TypeFollow:
		return asActivity(NewFollow(base))
	case TypeAccept:
		return asActivity(NewAccept(base))
	case TypeReject:
		return asActivity(NewReject(base))
	case TypeAdd:
		return asActivity(NewAdd(base))
	case TypeRemove:
		return asActivity(NewRemove(base))
	case TypeAnnounce:
		return asActivity(NewAnnounce(base))
	case TypeLike:
		return asActivity(NewLike(base))
	case TypeUndo:
		return asActivity(NewUndo(base))
	case TypeBlock:
		return asActivity(NewBlock(base))
	case TypeFlag:
		return asActivity(NewFlag(base))
	case TypeRead:
		return asActivity(NewRead(base))
	default:
		return &Unknown{base}, nil
	}
}

func asActivity[T Activity](act T, err error) (Activity, error) {
	if err != nil {
		return nil, err
	}
	return act, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", shared.ErrMalformedActivity, fmt.Sprintf(format, args...))
}

func parseBase(obj Object) (ActivityBase, error) {
	var res ActivityBase
	if obj == nil {
		return res, malformed("activity is empty")
	}
	res.Raw = obj
	res.Id = obj.Id()
	if res.Type = obj.Type(); res.Type == "" {
		return res, malformed("activity has no type")
	}
	if res.Actor = obj.RefId("actor"); res.Actor == "" {
		return res, malformed("%s has no actor", res.Type)
	}
	res.To = obj.Audience("to")
	res.Cc = obj.Audience("cc")
	res.Object = obj.Ref("object")
	return res, nil
}

func requireObject(base *ActivityBase) error {
	if base.Object.IsZero() {
		return malformed("%s has no object", base.Type)
	}
	return nil
}

func NewCreate(base ActivityBase) (*Create, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Create{base}, nil
}

func NewUpdate(base ActivityBase) (*Update, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Update{base}, nil
}

func NewDelete(base ActivityBase) (*Delete, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Delete{base}, nil
}

func NewFollow(base ActivityBase) (*Follow, error) {
	if base.Object.Id() == "" {
		return nil, malformed("Follow has no followee")
	}
	return &Follow{base}, nil
}

func NewAccept(base ActivityBase) (*Accept, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Accept{base}, nil
}

func NewReject(base ActivityBase) (*Reject, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Reject{base}, nil
}

func NewAdd(base ActivityBase) (*Add, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Add{ActivityBase: base, Target: base.Raw.RefId("target")}, nil
}

func NewRemove(base ActivityBase) (*Remove, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Remove{ActivityBase: base, Target: base.Raw.RefId("target")}, nil
}

// NewAnnounce requires an id: the renote created from it is stored under that URI.
func NewAnnounce(base ActivityBase) (*Announce, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	if base.Id == "" {
		return nil, malformed("Announce has no id")
	}
	res := &Announce{ActivityBase: base}
	if published := base.Raw.Str("published"); published != "" {
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			res.Published = &t
		}
	}
	return res, nil
}

func NewLike(base ActivityBase) (*Like, error) {
	if base.Object.Id() == "" {
		return nil, malformed("Like has no object id")
	}
	res := &Like{ActivityBase: base, Reaction: DefaultReaction}
	for _, key := range []string{"_misskey_reaction", "content", "name"} {
		if val := base.Raw.Str(key); val != "" {
			res.Reaction = val
			break
		}
	}
	return res, nil
}

func NewUndo(base ActivityBase) (*Undo, error) {
	if err := requireObject(&base); err != nil {
		return nil, err
	}
	return &Undo{base}, nil
}

func NewBlock(base ActivityBase) (*Block, error) {
	if base.Object.Id() == "" {
		return nil, malformed("Block has no blockee")
	}
	return &Block{base}, nil
}

func NewFlag(base ActivityBase) (*Flag, error) {
	uris := base.Raw.RefIds("object")
	if len(uris) == 0 {
		return nil, malformed("Flag has no objects")
	}
	return &Flag{ActivityBase: base, Content: base.Raw.Str("content"), ObjectUris: uris}, nil
}

func NewRead(base ActivityBase) (*Read, error) {
	if base.Object.Id() == "" {
		return nil, malformed("Read has no object id")
	}
	return &Read{base}, nil
}
