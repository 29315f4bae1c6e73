package gemini

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/idna"
)

// DefaultPort is used when the URL does not carry a port.
const DefaultPort = "1965"

// URLMaxLength is the longest request URL a server has to accept.
const URLMaxLength = 1024

// Transport opens a secure byte stream to a Gemini server.
// host is always in host:port form.
type Transport interface {
	Dial(host string) (io.ReadWriteCloser, error)
}

// Phase names the step of a fetch attempt that failed.
type Phase string

const (
	PhaseURL     Phase = "url"
	PhaseConnect Phase = "connect"
	PhaseWrite   Phase = "write"
	PhaseRead    Phase = "read"
	PhaseDecode  Phase = "decode"
)

// FetchError is returned when a single fetch attempt fails.
type FetchError struct {
	Phase Phase
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	switch e.Phase {
	case PhaseURL:
		return fmt.Sprintf("invalid URL %q: %v", e.URL, e.Err)
	case PhaseConnect:
		return fmt.Sprintf("failed to connect to the server: %v", e.Err)
	case PhaseWrite:
		return fmt.Sprintf("could not send request to the server: %v", e.Err)
	case PhaseRead:
		return fmt.Sprintf("failed to read response: %v", e.Err)
	default:
		return fmt.Sprintf("failed to parse response: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchOnce sends a single request for rawURL and reads the whole response.
// Redirects are not followed.
func FetchOnce(t Transport, rawURL string) (*Response, error) {
	host, err := requestHost(rawURL)
	if err != nil {
		return nil, &FetchError{PhaseURL, rawURL, err}
	}

	conn, err := t.Dial(host)
	if err != nil {
		return nil, &FetchError{PhaseConnect, rawURL, err}
	}
	defer conn.Close()

	if _, err := conn.Write(EncodeRequest(rawURL)); err != nil {
		return nil, &FetchError{PhaseWrite, rawURL, err}
	}

	raw, err := readAll(conn)
	if err != nil {
		return nil, &FetchError{PhaseRead, rawURL, err}
	}

	res, err := DecodeResponse(raw)
	if err != nil {
		return nil, &FetchError{PhaseDecode, rawURL, err}
	}
	return res, nil
}

// FetchWithRedirects fetches rawURL, following redirects until a
// non-redirect response arrives. At most maxRedirects+1 requests are made.
// The redirect target is taken from the meta field as is.
func FetchWithRedirects(t Transport, rawURL string, maxRedirects int) (*Response, error) {
	return fetchWithRedirects(t, rawURL, maxRedirects, nil)
}

func fetchWithRedirects(t Transport, rawURL string, maxRedirects int, logger *log.Logger) (*Response, error) {
	current := rawURL
	for redirects := 0; redirects <= maxRedirects; {
		if logger != nil {
			logger.Printf("fetching %s", current)
		}
		res, err := FetchOnce(t, current)
		if err != nil {
			return nil, err
		}

		cat, err := res.Header.Category()
		if err != nil {
			return nil, &FetchError{PhaseDecode, current, err}
		}
		if cat != CategoryRedirect {
			return res, nil
		}

		redirects++
		if logger != nil {
			logger.Printf("redirect %d: %s -> %s", redirects, current, res.Header.Meta)
		}
		current = res.Header.Meta
	}
	return nil, &TooManyRedirectsError{Limit: maxRedirects}
}

// readAll reads until the server closes the stream. A connection aborted
// by the server after it sent its response counts as a normal close.
func readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r)
	if err != nil && !(buf.Len() > 0 && errors.Is(err, syscall.ECONNABORTED)) {
		return nil, err
	}
	return buf.Bytes(), nil
}

// requestHost returns the host:port to dial for rawURL.
// Hostnames with Unicode in them are converted to punycode.
func requestHost(rawURL string) (string, error) {
	if len(rawURL) > URLMaxLength {
		return "", errors.New("url is too long")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "" && u.Scheme != "gemini" {
		return "", fmt.Errorf("unknown scheme %q", u.Scheme)
	}
	return getHost(u)
}

func getHost(u *url.URL) (string, error) {
	hostname := u.Hostname()
	if hostname != "" && net.ParseIP(hostname) == nil {
		var err error
		hostname, err = idna.Lookup.ToASCII(hostname)
		if err != nil {
			return "", fmt.Errorf("invalid hostname: %w", err)
		}
	}
	port := u.Port()
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(hostname, port), nil
}

// Client fetches Gemini resources and follows redirects.
type Client struct {
	// Transport opens the connections. DefaultClient uses a TLSTransport
	// that accepts self-signed certificates after hostname and expiry checks.
	Transport Transport
	// MaxRedirects is how many redirects are followed before giving up.
	MaxRedirects int
	// AllowInvalidStatuses means the client won't raise an error if a status
	// that is out of spec is returned.
	AllowInvalidStatuses bool
	// Logger, if set, receives a line for every request and redirect.
	Logger *log.Logger
}

var DefaultClient = &Client{
	Transport:    &TLSTransport{Timeout: 15 * time.Second},
	MaxRedirects: 10,
}

// Fetch a resource from a Gemini server with the given URL, following redirects.
// It assumes port 1965 if no port is specified.
func (c *Client) Fetch(rawURL string) (*Response, error) {
	t := c.Transport
	if t == nil {
		t = DefaultClient.Transport
	}

	res, err := fetchWithRedirects(t, rawURL, c.MaxRedirects, c.Logger)
	if err != nil {
		return nil, err
	}

	if !c.AllowInvalidStatuses {
		status, err := strconv.Atoi(res.Header.Status)
		if err != nil || !IsStatusValid(status) {
			return nil, &StatusError{
				Err:    errors.New("invalid status code"),
				Status: res.Header.Status,
				Meta:   res.Header.Meta,
			}
		}
	}
	return res, nil
}

// Fetch a resource from a Gemini server with the default client.
func Fetch(url string) (*Response, error) {
	return DefaultClient.Fetch(url)
}
