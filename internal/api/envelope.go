package api

import (
	"bytes"
	"encoding/json"

	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
)

// Envelope is a tolerant wrapper over a 2xx response body. The contract
// is not uniform: list endpoints answer either a paginated envelope
// ({"data":{"content":[…]}}), a flat envelope ({"data":[…]}) or a bare
// array, and some endpoints carry side-channel fields next to data.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	// Side-channel fields some endpoints put next to data
	Summary          json.RawMessage `json:"summary"`
	UnreadCount      int             `json:"unreadCount"`
	EventStatus      string          `json:"eventStatus"`
	StatusTransition string          `json:"statusTransition"`

	raw []byte
}

// Raw returns the unparsed response body.
func (e *Envelope) Raw() []byte {
	return e.raw
}

// List normalizes the three list shapes into out (a pointer to a slice).
// Missing or null data yields an empty result, not an error.
func (e *Envelope) List(out interface{}) error {
	payload := e.listPayload()
	if payload == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewCustomError(apperrors.ErrRequestFailed, "unexpected response shape")
	}
	return nil
}

func (e *Envelope) listPayload() []byte {
	data := bytes.TrimSpace(e.Data)
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if data[0] == '[' {
			return data
		}
		// Paginated envelope: {"content":[…], …}
		var page struct {
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(data, &page); err == nil {
			if content := bytes.TrimSpace(page.Content); len(content) > 0 && content[0] == '[' {
				return content
			}
		}
		return nil
	}
	if raw := bytes.TrimSpace(e.raw); len(raw) > 0 && raw[0] == '[' {
		return raw
	}
	return nil
}

// Object decodes a single entity, from under data when present or from
// the bare body (the login response is not enveloped).
func (e *Envelope) Object(out interface{}) error {
	payload := bytes.TrimSpace(e.Data)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = bytes.TrimSpace(e.raw)
	}
	if len(payload) == 0 {
		return apperrors.NewCustomError(apperrors.ErrRequestFailed, "empty response")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewCustomError(apperrors.ErrRequestFailed, "unexpected response shape")
	}
	return nil
}

// DecodeSummary decodes the summary side-channel, when present.
func (e *Envelope) DecodeSummary(out interface{}) error {
	summary := bytes.TrimSpace(e.Summary)
	if len(summary) == 0 || bytes.Equal(summary, []byte("null")) {
		return nil
	}
	return json.Unmarshal(summary, out)
}
