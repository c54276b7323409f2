// Package client talks to the chat server's identity API over gRPC.
//
// GRPCClient keeps the session token returned by Signin and attaches it as
// "authorization: Bearer <token>" metadata on every later call. Status codes
// are mapped to ErrUnauthorized and ErrUnavailable so callers can match them
// with errors.Is.
package client
