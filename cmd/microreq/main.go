// Command microreq performs a single HTTP/1.0 request and prints the response.
//
//	microreq [method] <url> [flags]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/frankli0324/go-microhttp/internal/config"
	"github.com/frankli0324/go-microhttp/internal/http"
	"github.com/frankli0324/go-microhttp/internal/logging"
)

type options struct {
	headers   []string
	data      string
	json      string
	inFile    string
	jsonLines bool
	outFile   string
	debug     bool
	config    string
	timeout   time.Duration
	include   bool
}

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "microreq [method] <url>",
		Short:         "Send one HTTP/1.0 request",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			err := run(ctx, stdout, stderr, opts, args)
			if err != nil {
				fmt.Fprintln(stderr, "microreq:", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Key: value", repeatable`)
	f.StringVarP(&opts.data, "data", "d", "", "raw request body")
	f.StringVarP(&opts.json, "json", "j", "", "JSON request body")
	f.StringVar(&opts.inFile, "in-file", "", "send the content of a file as the request body")
	f.BoolVar(&opts.jsonLines, "json-lines", false, `send every line of --in-file as {"text": line} in a JSON array`)
	f.StringVarP(&opts.outFile, "out-file", "o", "", "write the response body to a file")
	f.BoolVar(&opts.debug, "debug", false, "echo the exchange to stderr")
	f.StringVarP(&opts.config, "config", "c", "", "path of a YAML configuration file")
	f.DurationVar(&opts.timeout, "timeout", 0, "deadline for the whole exchange")
	f.BoolVarP(&opts.include, "include", "i", false, "print the response header")
	return cmd
}

func (o *options) request(args []string) (*http.Request, error) {
	req := &http.Request{Method: "GET", URL: args[len(args)-1], Debug: o.debug, OutFile: o.outFile}
	if len(args) == 2 {
		req.Method = strings.ToUpper(args[0])
	}

	req.Header = &http.Header{}
	for _, h := range o.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("header %q: expected \"Key: value\"", h)
		}
		req.Header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}

	switch {
	case o.data != "" && o.json != "":
		return nil, fmt.Errorf("--data and --json: %w", http.ErrConflictingBody)
	case o.data != "":
		req.Body = http.RawBody(o.data)
	case o.json != "":
		var v interface{}
		if err := json.Unmarshal([]byte(o.json), &v); err != nil {
			return nil, fmt.Errorf("--json: %w", err)
		}
		req.Body = http.JSONBody{V: v}
	}
	if o.jsonLines && o.inFile == "" {
		return nil, errors.New("--json-lines needs --in-file")
	}
	if o.inFile != "" {
		req.BodyFile = o.inFile
		if o.jsonLines {
			req.BodyFileMode = http.StreamJSONLines
		}
	}
	if len(args) == 1 && (req.Body != nil || req.BodyFile != "") {
		req.Method = "POST"
	}
	return req, nil
}

func run(ctx context.Context, stdout, stderr io.Writer, o options, args []string) error {
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if o.debug {
		level = "debug"
	}
	logger := logging.New(stderr, level)

	client, err := cfg.NewClient(logger)
	if err != nil {
		return err
	}
	req, err := o.request(args)
	if err != nil {
		return err
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Close()

	if o.include {
		fmt.Fprintf(stdout, "%s %d %s\n", resp.Proto, resp.StatusCode, resp.Reason)
		resp.Header.Each(func(k, v string) error {
			_, err := fmt.Fprintf(stdout, "%s: %s\n", k, v)
			return err
		})
		fmt.Fprintln(stdout)
	}
	if resp.Policy == http.StreamedToFile {
		fmt.Fprintf(stderr, "%d %s, %s written to %s\n",
			resp.StatusCode, resp.Reason, humanize.Bytes(uint64(resp.Written)), o.outFile)
		return nil
	}
	body, err := resp.Content()
	if err != nil {
		return err
	}
	_, err = stdout.Write(body)
	return err
}
