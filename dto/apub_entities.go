package dto

import (
	"encoding/json"
	"errors"
)

type UserInfo struct {
	Context           any           `json:"@context"`
	Id                string        `json:"id"`
	Type              string        `json:"type"`
	PreferredUserName string        `json:"preferredUsername"`
	Name              string        `json:"name"`
	Summary           string        `json:"summary"`
	Url               string        `json:"url,omitempty"`
	ManuallyApproves  bool          `json:"manuallyApprovesFollowers"`
	Published         string        `json:"published,omitempty"`
	Inbox             string        `json:"inbox"`
	Outbox            string        `json:"outbox"`
	Followers         string        `json:"followers"`
	Following         string        `json:"following"`
	Featured          string        `json:"featured,omitempty"`
	Endpoints         UserEndpoints `json:"endpoints"`
	PublicKey         PublicKey     `json:"publicKey"`
	AdditionalKeys    []PublicKey   `json:"additionalPublicKeys,omitempty"`
	Attachments       []Attachment  `json:"attachment,omitempty"`
	Icon              *Image        `json:"icon,omitempty"`
	Image             *Image        `json:"image,omitempty"`
}

type Attachment struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Image struct {
	Type string `json:"type"`
	Url  string `json:"url"`
}

type UserEndpoints struct {
	SharedInbox string `json:"sharedInbox,omitempty"`
}

type PublicKey struct {
	Id           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

type OrderedListSummary struct {
	Context    any     `json:"@context"`
	Id         string  `json:"id"`
	Type       string  `json:"type"`
	TotalItems uint    `json:"totalItems"`
	First      *string `json:"first,omitempty"`
	Last       *string `json:"last,omitempty"`
}

// getRecipient accepts a single recipient or an array; recipients may be URIs or embedded objects.
func getRecipient(raw any) ([]string, error) {
	var res []string
	if raw == nil {
		return res, nil
	}
	if slice, ok := raw.([]interface{}); ok {
		for _, s := range slice {
			if id := GetApId(s); id != "" {
				res = append(res, id)
			} else {
				return res, errors.New("list of recipients must only contain URIs or objects with an id")
			}
		}
	} else if id := GetApId(raw); id != "" {
		res = []string{id}
	} else {
		return res, errors.New("to and cc must be a single recipient or an array of recipients")
	}
	return res, nil
}

type ActivityOut struct {
	Context any       `json:"@context,omitempty"`
	Id      string    `json:"id"`
	Type    string    `json:"type"`
	Actor   string    `json:"actor"`
	To      *[]string `json:"to,omitempty"`
	Cc      *[]string `json:"cc,omitempty"`
	Object  any       `json:"object,omitempty"`
	Target  string    `json:"target,omitempty"`
}

type Note struct {
	Context         any        `json:"@context,omitempty"`
	Id              string     `json:"id"`
	Type            string     `json:"type"`
	Url             string     `json:"url,omitempty"`
	Published       string     `json:"published,omitempty"`
	Summary         *string    `json:"summary"`
	Sensitive       bool       `json:"sensitive,omitempty"`
	AttributedTo    string     `json:"-"`
	RawAttributedTo any        `json:"attributedTo"`
	InReplyTo       *string    `json:"-"`
	RawInReplyTo    any        `json:"inReplyTo"`
	QuoteUrl        string     `json:"quoteUrl,omitempty"`
	MisskeyQuote    string     `json:"_misskey_quote,omitempty"`
	To              []string   `json:"-"`
	RawTo           any        `json:"to"`
	Cc              []string   `json:"-"`
	RawCc           any        `json:"cc"`
	Content         string     `json:"content"`
	Tag             *[]Tag     `json:"-"`
	RawTag          any        `json:"tag,omitempty"`
	OneOf           []PollItem `json:"oneOf,omitempty"`
	AnyOf           []PollItem `json:"anyOf,omitempty"`
	EndTime         string     `json:"endTime,omitempty"`
}

type PollItem struct {
	Type    string       `json:"type"`
	Name    string       `json:"name"`
	Replies PollReplyCnt `json:"replies"`
}

type PollReplyCnt struct {
	Type       string `json:"type"`
	TotalItems int    `json:"totalItems"`
}

func (x *Note) UnmarshalJSON(data []byte) error {
	var err error
	type Y Note
	var y = (*Y)(x)
	if err = json.Unmarshal(data, y); err != nil {
		return err
	}
	y.AttributedTo = GetApId(y.RawAttributedTo)
	if replyTo := GetApId(y.RawInReplyTo); replyTo != "" {
		y.InReplyTo = &replyTo
	}
	if y.To, err = getRecipient(y.RawTo); err != nil {
		return err
	}
	if y.Cc, err = getRecipient(y.RawCc); err != nil {
		return err
	}
	if y.Tag, err = getTag(y.RawTag); err != nil {
		return err
	}
	return nil
}

func (x *Note) MarshalJSON() ([]byte, error) {
	type Y Note
	var y = (*Y)(x)
	y.RawAttributedTo = y.AttributedTo
	y.RawInReplyTo = y.InReplyTo
	y.RawTo = y.To
	y.RawCc = y.Cc
	if y.Tag != nil {
		y.RawTag = y.Tag
	}
	return json.Marshal(y)
}

type Tag struct {
	Type      string `json:"type"`
	Href      string `json:"href,omitempty"`
	Name      string `json:"name,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
}

func getTag(raw any) (*[]Tag, error) {
	// No value is legit
	if raw == nil {
		return nil, nil
	}

	retrieve := func(obj map[string]interface{}) (*Tag, error) {
		var tag Tag
		var ok bool
		if tag.Type, ok = obj["type"].(string); !ok {
			return nil, errors.New("invalid data in tag's 'type' property; string expected")
		}
		// Emoji tags have no href, Link tags have no name
		tag.Href, _ = obj["href"].(string)
		tag.Name, _ = obj["name"].(string)
		tag.MediaType, _ = obj["mediaType"].(string)
		return &tag, nil
	}

	// Single Tag object
	if obj, ok := raw.(map[string]interface{}); ok {
		if tag, err := retrieve(obj); err != nil {
			return nil, err
		} else {
			return &[]Tag{*tag}, nil
		}
	}
	// Array
	if slice, ok := raw.([]interface{}); ok {
		var res []Tag
		for _, s := range slice {
			if obj, ok := s.(map[string]interface{}); ok {
				if tag, err := retrieve(obj); err != nil {
					return nil, err
				} else {
					res = append(res, *tag)
				}
			} else {
				return nil, errors.New("unexpected item in 'tag' array; must only contain tag objects")
			}
		}
		return &res, nil
	}
	return nil, errors.New("invalid data in 'tag' property")
}
