package dto

import (
	"encoding/json"
	"errors"
	"fedi_engine/shared"
)

// Object is an ActivityStreams object as received over the wire, before it is validated into a typed value.
type Object map[string]any

// Ref points at an object either by URI or by embedding it.
type Ref struct {
	Uri string
	Obj Object
}

func UriRef(uri string) Ref {
	return Ref{Uri: uri}
}

func ObjRef(obj Object) Ref {
	return Ref{Obj: obj}
}

// RefOf interprets a raw JSON value as a reference. For arrays, the first usable item wins.
func RefOf(raw any) Ref {
	switch v := raw.(type) {
	case string:
		return Ref{Uri: v}
	case Object:
		return Ref{Obj: v}
	case map[string]any:
		return Ref{Obj: Object(v)}
	case []any:
		for _, item := range v {
			if ref := RefOf(item); !ref.IsZero() {
				return ref
			}
		}
	}
	return Ref{}
}

func (r Ref) IsZero() bool {
	return r.Uri == "" && r.Obj == nil
}

func (r Ref) IsMaterialized() bool {
	return r.Obj != nil
}

// Id is the URI the reference stands for, whether it was sent by value or by reference.
func (r Ref) Id() string {
	if r.Obj != nil {
		return r.Obj.Id()
	}
	return r.Uri
}

func ParseObject(data []byte) (Object, error) {
	var res Object
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("JSON value is not an object")
	}
	return res, nil
}

// ToObject turns any JSON-serializable value (typically a rendered DTO) into an Object.
func ToObject(v any) (Object, error) {
	if obj, ok := v.(Object); ok {
		return obj, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseObject(data)
}

// Decode re-reads the object into a typed DTO.
func (o Object) Decode(target any) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (o Object) Id() string {
	s, _ := o["id"].(string)
	return s
}

func (o Object) Type() string {
	return GetApType(o)
}

func (o Object) Str(key string) string {
	s, _ := o[key].(string)
	return s
}

func (o Object) Ref(key string) Ref {
	return RefOf(o[key])
}

// RefId is the id of the first object referenced under key.
func (o Object) RefId(key string) string {
	return GetApId(o[key])
}

func (o Object) RefIds(key string) []string {
	return GetApIds(o[key])
}

// Refs lists every reference under key, e.g. the items of a collection.
func (o Object) Refs(key string) []Ref {
	var res []Ref
	switch v := o[key].(type) {
	case []any:
		for _, item := range v {
			if ref := RefOf(item); !ref.IsZero() {
				res = append(res, ref)
			}
		}
	default:
		if ref := RefOf(v); !ref.IsZero() {
			res = append(res, ref)
		}
	}
	return res
}

// Audience reads to/cc-style fields, which may hold a single URI or an array.
func (o Object) Audience(key string) []string {
	res, _ := getRecipient(o[key])
	return res
}

func (o Object) HasAsContext() bool {
	switch ctx := o["@context"].(type) {
	case string:
		return ctx == shared.ActivityStreamsNs
	case []any:
		for _, item := range ctx {
			if s, ok := item.(string); ok && s == shared.ActivityStreamsNs {
				return true
			}
		}
	}
	return false
}

func GetApId(raw any) string {
	return RefOf(raw).Id()
}

func GetApIds(raw any) []string {
	var res []string
	if slice, ok := raw.([]any); ok {
		for _, item := range slice {
			if id := GetApId(item); id != "" {
				res = append(res, id)
			}
		}
		return res
	}
	if id := GetApId(raw); id != "" {
		res = append(res, id)
	}
	return res
}

func GetApType(raw any) string {
	var obj map[string]any
	switch v := raw.(type) {
	case Object:
		obj = v
	case map[string]any:
		obj = v
	default:
		return ""
	}
	switch t := obj["type"].(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				return s
			}
		}
	}
	return ""
}
