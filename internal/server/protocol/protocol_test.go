package protocol

import (
	"bytes"
	"testing"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"LicenceUserName": "alice", "LicenceKey": "6384e2b2184bcbf58eccf10ca7a6563c"}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", req.User())
	assert.Equal(t, "6384e2b2184bcbf58eccf10ca7a6563c", req.Key())

	req, err = DecodeRequest([]byte(`{"LicenceUserName":"bob","LicenceKey":""}`))
	require.NoError(t, err, "empty key is present, not missing")
	assert.Equal(t, "", req.Key())
}

func TestDecodeRequest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `LicenceUserName=alice`},
		{name: "truncated", data: `{"LicenceUserName":"alice"`},
		{name: "missing key", data: `{"LicenceUserName":"alice"}`},
		{name: "missing user", data: `{"LicenceKey":"k"}`},
		{name: "null user", data: `{"LicenceUserName":null,"LicenceKey":"k"}`},
		{name: "wrong type", data: `{"LicenceUserName":1,"LicenceKey":"k"}`},
		{name: "empty", data: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tt.data))
			assert.ErrorIs(t, err, common.ErrMalformedRequest)
		})
	}
}

func TestEncodeResponse_Granted(t *testing.T) {
	exp := time.Date(2026, 10, 17, 12, 0, 5, 123000000, time.UTC)

	b, err := EncodeResponse(Granted("alice", exp))
	require.NoError(t, err)
	assert.JSONEq(t, `{"LicenceUserName":"alice","Licence":true,"Expired":"2026-10-17T12:00:05.123Z"}`, string(b))
	assert.False(t, bytes.ContainsRune(b, '\n'))
}

func TestEncodeResponse_Denied(t *testing.T) {
	b, err := EncodeResponse(Denied("mallory", "License user name 'mallory' not found."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"LicenceUserName":"mallory","Licence":false,"Description":"License user name 'mallory' not found."}`, string(b))
}

func TestResponseRoundTripExpiresAt(t *testing.T) {
	exp := time.Date(2026, 10, 17, 12, 0, 5, 987654321, time.UTC)

	b, err := EncodeResponse(Granted("alice", exp))
	require.NoError(t, err)

	resp, err := DecodeResponse(b)
	require.NoError(t, err)
	assert.True(t, resp.Licence)

	got, err := resp.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestEncodeRequest(t *testing.T) {
	b, err := EncodeRequest(NewRequest("alice", "k"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"LicenceUserName":"alice","LicenceKey":"k"}`, string(b))
}
