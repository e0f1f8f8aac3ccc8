package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-submit/submit"
)

const usage = `Send one email through an SMTP submission server.

Required flags:

    -host      SMTP server host name.
    -to        Recipient address. Add multiple times for multiple recipients.
    -from      From: address.

Optional flags:

    -subject    Subject: header.
    -port       Server port (default 587).
    -mode       "cleartext", "opportunistic", or "forced" (default "opportunistic").
    -user       AUTH username.
    -pass       AUTH password.
    -timeout    Per-command timeout in seconds (default 5).
    -body       Read message body from a file. The default is to read from stdin.
`

type toFlags []string

func (t *toFlags) String() string { return fmt.Sprint(*t) }
func (t *toFlags) Set(v string) error {
	*t = append(*t, v)
	return nil
}

func main() {
	flag.Usage = func() { fmt.Print(usage) }

	var (
		host, mode, from, subject, user, pass, bodyFile string
		port, timeout                                   int
		to                                               toFlags
	)
	flag.StringVar(&host, "host", "", "")
	flag.StringVar(&mode, "mode", "opportunistic", "")
	flag.StringVar(&from, "from", "", "")
	flag.StringVar(&subject, "subject", "", "")
	flag.StringVar(&user, "user", "", "")
	flag.StringVar(&pass, "pass", "", "")
	flag.StringVar(&bodyFile, "body", "", "")
	flag.IntVar(&port, "port", 587, "")
	flag.IntVar(&timeout, "timeout", 5, "")
	flag.Var(&to, "to", "")
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(os.Args) == 1 {
		fmt.Print(usage)
		return
	}
	if host == "" || from == "" || len(to) == 0 {
		fmt.Fprintln(os.Stderr, "-host, -from, and at least one -to are required")
		os.Exit(1)
	}

	client, err := newClient(mode, host, uint(port))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client.SetCommandTimeout(time.Duration(timeout) * time.Second)
	if user != "" {
		client.SetCredentials(submit.NewCredential(user, pass))
	}

	body, err := readBody(bodyFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	msg := submit.Message{
		From:     submit.MessageAddress{Address: from},
		To:       addresses(to),
		Subject:  subject,
		MimeType: "text/plain",
		Body:     body,
	}

	if err := client.SendMail(msg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, client.CommunicationLog())
		os.Exit(1)
	}
}

func newClient(mode, host string, port uint) (*submit.Client, error) {
	switch mode {
	case "cleartext":
		return submit.NewCleartextClient(host, port)
	case "forced":
		return submit.NewForcedClient(host, port)
	default:
		return submit.NewOpportunisticClient(host, port)
	}
}

func addresses(raw []string) []submit.MessageAddress {
	out := make([]submit.MessageAddress, len(raw))
	for i, a := range raw {
		out[i] = submit.MessageAddress{Address: a}
	}
	return out
}

func readBody(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

