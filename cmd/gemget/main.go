// Command gemget fetches a Gemini URL and prints the body of the response.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	gemini "github.com/makeworld-the-better-one/gemfetch"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("gemget: ")

	maxRedirects := flag.Int("max-redirects", 10, "maximum number of redirects to follow")
	validate := flag.Bool("validate-certificate", false, "verify the server certificate chain against the system roots")
	insecure := flag.Bool("insecure", false, "skip all certificate checks")
	timeout := flag.Duration("timeout", 15*time.Second, "connection timeout")
	wsProxy := flag.String("ws-proxy", "", "tunnel connections through this WebSocket proxy URL")
	verbose := flag.Bool("v", false, "log requests and redirects to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: gemget [flags] URL\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *maxRedirects < 0 {
		log.Fatal("-max-redirects must not be negative")
	}

	transport := &gemini.TLSTransport{
		Insecure:            *insecure,
		ValidateCertificate: *validate,
		Timeout:             *timeout,
	}
	if *wsProxy != "" {
		transport.Dialer = &gemini.WebSocketDialer{URL: *wsProxy}
	}

	client := &gemini.Client{
		Transport:    transport,
		MaxRedirects: *maxRedirects,
	}
	if *verbose {
		client.Logger = log.New(os.Stderr, "gemget: ", 0)
	}

	res, err := client.Fetch(flag.Arg(0))
	if err != nil {
		var fe *gemini.FetchError
		if errors.As(err, &fe) {
			log.Fatalf("%s: %v", fe.Phase, err)
		}
		log.Fatal(err)
	}

	cat, err := res.Header.Category()
	if err != nil {
		log.Fatal(err)
	}
	if cat != gemini.CategorySuccess {
		log.Fatalf("%s - %s", res.Header.Status, res.Header.Meta)
	}
	fmt.Println(res.Body)
}
