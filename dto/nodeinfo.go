package dto

const (
	NodeInfoSchema20 = "http://nodeinfo.diaspora.software/ns/schema/2.0"
	NodeInfoSchema21 = "http://nodeinfo.diaspora.software/ns/schema/2.1"
)

type NodeInfoLinks struct {
	Links []NodeInfoLink `json:"links"`
}

type NodeInfoLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type NodeInfo struct {
	Version           string           `json:"version"`
	Software          NodeInfoSoftware `json:"software"`
	Protocols         []string         `json:"protocols"`
	OpenRegistrations bool             `json:"openRegistrations"`
	Metadata          map[string]any   `json:"metadata"`
}

type NodeInfoSoftware struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NodeName is the instance's self-declared name, if the software publishes one.
func (ni *NodeInfo) NodeName() string {
	if ni.Metadata == nil {
		return ""
	}
	if name, ok := ni.Metadata["nodeName"].(string); ok {
		return name
	}
	if name, ok := ni.Metadata["name"].(string); ok {
		return name
	}
	return ""
}

// SignatureLevel is the HTTP signature implementation level the instance advertises, if any.
func (ni *NodeInfo) SignatureLevel() string {
	if ni.Metadata == nil {
		return ""
	}
	level, _ := ni.Metadata["httpMessageSignaturesImplementationLevel"].(string)
	return level
}
