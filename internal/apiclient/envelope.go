package apiclient

import "encoding/json"

// envelope is the repeating response shape of the upstream REST contract:
// {status, message?, data}.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// duplicatesEnvelope wraps the duplicate-pair listing, which does not follow
// the common envelope.
type duplicatesEnvelope struct {
	PotentialDuplicates duplicatesPage `json:"potential_duplicates"`
}

type duplicatesPage struct {
	CurrentPage int             `json:"current_page"`
	Data        json.RawMessage `json:"data"`
}

// keepRequest is the body of POST /farmer/keep/{old|new}/data.
type keepRequest struct {
	Farmer1ID string `json:"farmer1_id"`
	Farmer2ID string `json:"farmer2_id"`
}
