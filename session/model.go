package session

import "encoding/json"

// RefreshRecord defines a public type used by goSession APIs.
//
// RefreshRecord instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshRecord struct {
	UserID       string `json:"uid"`
	CredentialID string `json:"cid"`
	DeviceInfo   string `json:"dev,omitempty"`

	// Superseded marks a record whose secret has been rotated away. The
	// record lingers only until its delete lands or its TTL fires; any
	// presentation of a superseded secret is a reuse event.
	Superseded bool `json:"sup,omitempty"`

	CreatedAt int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

func encodeRecord(rec *RefreshRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(data []byte) (*RefreshRecord, error) {
	var rec RefreshRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrRecordCorrupt
	}
	if rec.UserID == "" || rec.CredentialID == "" {
		return nil, ErrRecordCorrupt
	}
	return &rec, nil
}
