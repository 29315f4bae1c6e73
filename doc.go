// Package gemini is a small client for the Gemini protocol.
//
// A request is a single URL line, a response is a status and meta line
// followed by a body running until the server closes the connection.
// DecodeResponse and EncodeRequest handle that framing, Classify sorts
// statuses by their first digit, and FetchWithRedirects ties them to a
// Transport, following redirects up to a limit.
//
// Bodies are read in full and always decoded as UTF-8.
//
// It will automatically handle URLs that have IDNs in them, ie domains with Unicode.
// It will convert to punycode for DNS, but the request line is sent as given.
package gemini
