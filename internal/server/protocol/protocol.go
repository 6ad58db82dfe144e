// Package protocol defines the JSON messages exchanged over a license
// connection: one Request from the client, one Response from the server.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
)

// TimeLayout is the ISO-8601 layout of the Expired field.
const TimeLayout = time.RFC3339Nano

// Request asks for a license for LicenceUserName. Both fields are required;
// the key may be an empty string.
type Request struct {
	LicenceUserName *string `json:"LicenceUserName"`
	LicenceKey      *string `json:"LicenceKey"`
}

// NewRequest builds a Request with both fields set.
func NewRequest(user, key string) Request {
	return Request{LicenceUserName: &user, LicenceKey: &key}
}

// User returns the requested user name, or "" when absent.
func (r Request) User() string {
	if r.LicenceUserName == nil {
		return ""
	}
	return *r.LicenceUserName
}

// Key returns the supplied key, or "" when absent.
func (r Request) Key() string {
	if r.LicenceKey == nil {
		return ""
	}
	return *r.LicenceKey
}

// Response is either a grant (Licence true, Expired set) or a denial
// (Licence false, Description set).
type Response struct {
	LicenceUserName string `json:"LicenceUserName"`
	Licence         bool   `json:"Licence"`
	Expired         string `json:"Expired,omitempty"`
	Description     string `json:"Description,omitempty"`
}

// Granted builds a grant response.
func Granted(user string, expiresAt time.Time) Response {
	return Response{LicenceUserName: user, Licence: true, Expired: expiresAt.Format(TimeLayout)}
}

// Denied builds a denial response.
func Denied(user, reason string) Response {
	return Response{LicenceUserName: user, Licence: false, Description: reason}
}

// ExpiresAt parses the Expired field of a grant.
func (r Response) ExpiresAt() (time.Time, error) {
	return time.Parse(TimeLayout, r.Expired)
}

// DecodeRequest parses a request and checks that both fields are present.
// Every failure wraps common.ErrMalformedRequest.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(bytes.TrimSpace(data), &req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", common.ErrMalformedRequest, err)
	}
	if req.LicenceUserName == nil {
		return Request{}, fmt.Errorf("%w: missing LicenceUserName", common.ErrMalformedRequest)
	}
	if req.LicenceKey == nil {
		return Request{}, fmt.Errorf("%w: missing LicenceKey", common.ErrMalformedRequest)
	}
	return req, nil
}

// EncodeRequest serialises a request as a single newline-free JSON object.
func EncodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

// EncodeResponse serialises a response as a single newline-free JSON object.
func EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse parses a server response.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(data), &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %w", common.ErrMalformedRequest, err)
	}
	return resp, nil
}
