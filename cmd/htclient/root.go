// Command htclient is a thin demonstrator for the client package: it
// builds a Client from flags (and an optional config file), sends one
// request, and prints the result.
//
// Grounded on nabbar-golib/cobra's model.go (spfcbr.Command construction,
// OnInitialize header print) and console/color.go (color.New(attrs...)
// as the pass/fail signal).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nabbar/htcore/client"
	"github.com/nabbar/htcore/htconfig"
	"github.com/nabbar/htcore/htreq"
)

var (
	flagMethod     string
	flagHeaders    []string
	flagBody       string
	flagTimeout    time.Duration
	flagConfigFile string
	flagInsecure   bool
	flagNoColor    bool
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "htclient <url>",
		Short: "Send a single HTTP request through the htcore client pipeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runRequest,
	}

	flags := pflag.NewFlagSet(cmd.Use, pflag.ContinueOnError)
	flags.StringVarP(&flagMethod, "method", "X", "GET", "HTTP method")
	flags.StringArrayVarP(&flagHeaders, "header", "H", nil, "request header as \"Name: value\" (repeatable)")
	flags.StringVarP(&flagBody, "data", "d", "", "request body")
	flags.DurationVar(&flagTimeout, "timeout", 30*time.Second, "per-request timeout")
	flags.StringVarP(&flagConfigFile, "config", "c", "", "ClientOptions config file (yaml/toml/json)")
	flags.BoolVar(&flagInsecure, "insecure", false, "skip TLS certificate verification")
	flags.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	cmd.Flags().AddFlagSet(flags)

	return cmd
}

func runRequest(cmd *cobra.Command, args []string) error {
	target := args[0]

	opts := htconfig.DefaultClientOptions()
	if flagConfigFile != "" {
		loader := htconfig.NewLoader("")
		loader.SetConfigFile(flagConfigFile)
		loaded, err := loader.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		opts = loaded
	}
	if flagInsecure {
		opts.TLS.InsecureSkipVerify = true
	}

	c, err := client.New(client.Config{Options: opts})
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}
	defer c.Dispose()

	b := c.Request(htreq.Method(strings.ToUpper(flagMethod)), target)
	for _, h := range flagHeaders {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, want \"Name: value\"", h)
		}
		b = b.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if flagBody != "" {
		b = b.WithBody([]byte(flagBody))
	}
	b = b.WithTimeout(flagTimeout)

	resp, err := b.Send(context.Background())
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	printResult(cmd.OutOrStdout(), resp)
	if resp.Err != nil || !resp.Success() {
		os.Exit(1)
	}
	return nil
}

func printResult(w io.Writer, resp htreq.Response) {
	ok := resp.Err == nil && resp.Success()

	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	if flagNoColor {
		pass.DisableColor()
		fail.DisableColor()
	}

	if resp.Err != nil {
		_, _ = fail.Fprintf(w, "FAIL  %s\n", resp.Err.Error())
		return
	}
	if ok {
		_, _ = pass.Fprintf(w, "PASS  %d  %s\n", resp.Status, resp.Elapsed)
	} else {
		_, _ = fail.Fprintf(w, "FAIL  %d  %s\n", resp.Status, resp.Elapsed)
	}

	resp.Header.Range(func(name, value string) {
		_, _ = fmt.Fprintf(w, "%s: %s\n", name, value)
	})
	if len(resp.Body) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = w.Write(resp.Body)
		_, _ = fmt.Fprintln(w)
	}
}
