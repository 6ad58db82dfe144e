package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the admin
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultMaxRequestSize is the receive buffer ceiling for a single license
// request, in bytes. A request is read in one receive call; anything longer
// is rejected.
const DefaultMaxRequestSize = 4096

// ConnectFailedDescription is reported by the client when the server cannot
// be reached.
const ConnectFailedDescription = "Failed to connect to MLS server."
