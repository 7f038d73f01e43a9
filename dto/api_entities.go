package dto

import "time"

type Instance struct {
	Host               string     `json:"host"`
	SuspensionState    string     `json:"suspension_state"`
	IsNotResponding    bool       `json:"is_not_responding"`
	NotRespondingSince *time.Time `json:"not_responding_since,omitempty"`
	SigLevel           string     `json:"sig_level"`
	SoftwareName       string     `json:"software_name,omitempty"`
	SoftwareVersion    string     `json:"software_version,omitempty"`
	NodeName           string     `json:"node_name,omitempty"`
	OpenRegistrations  bool       `json:"open_registrations"`
	InfoUpdatedAt      *time.Time `json:"info_updated_at,omitempty"`
	FirstRetrievedAt   time.Time  `json:"first_retrieved_at"`
}

type SuspensionRequest struct {
	State string `json:"state"`
}

// DeliveryJobRequest queues a raw activity for one inbox.
type DeliveryJobRequest struct {
	To            string `json:"to"`
	SenderId      string `json:"sender_id"`
	Content       string `json:"content"`
	IsSharedInbox bool   `json:"is_shared_inbox"`
}

type DeliveryJobResponse struct {
	Id            int64     `json:"id"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
}
