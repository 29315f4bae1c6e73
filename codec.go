package gemini

import (
	"bytes"
	"unicode/utf8"
)

var crlf = []byte("\r\n")

// Header is the first line of a Gemini response.
type Header struct {
	// Status is the two character status code, e.g. "20".
	Status string
	// Meta is everything after the space. Its meaning depends on the status:
	// a MIME type on success, the new URL on redirect, a message otherwise.
	Meta string
}

// Category classifies the header status. It is not cached.
func (h Header) Category() (StatusCategory, error) {
	return Classify(h.Status)
}

// Response represents a complete response from a Gemini server.
type Response struct {
	Header Header
	// Body is the rest of the stream after the header line.
	// It is always treated as UTF-8, whatever charset Meta declares.
	Body string
}

// EncodeRequest returns the request line for the given URL.
// The URL is not checked.
func EncodeRequest(url string) []byte {
	req := make([]byte, 0, len(url)+len(crlf))
	req = append(req, url...)
	return append(req, crlf...)
}

// DecodeResponse parses a whole response, as read until the server closed
// the connection. The response is split at the first CRLF, so the body may
// contain CRLF itself.
func DecodeResponse(raw []byte) (*Response, error) {
	i := bytes.Index(raw, crlf)
	if i < 0 {
		return nil, ErrMissingTerminator
	}

	header, err := decodeHeader(raw[:i])
	if err != nil {
		return nil, err
	}

	body := raw[i+len(crlf):]
	if !utf8.Valid(body) {
		return nil, ErrInvalidEncoding
	}

	return &Response{Header: header, Body: string(body)}, nil
}

func decodeHeader(line []byte) (Header, error) {
	// Two status digits and a space, meta can be empty
	if len(line) < 3 {
		return Header{}, ErrHeaderTooShort
	}
	if line[2] != ' ' {
		return Header{}, ErrMissingSpace
	}

	status, meta := line[:2], line[3:]
	if !utf8.Valid(status) || !utf8.Valid(meta) {
		return Header{}, ErrInvalidEncoding
	}
	return Header{Status: string(status), Meta: string(meta)}, nil
}
