package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/hamed0406/pagemonitor/internal/config"
	"github.com/hamed0406/pagemonitor/internal/domain"
	"github.com/hamed0406/pagemonitor/internal/targets"
)

var errPreflight = errors.New("preflight failed")

func newPreflightCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Validate configuration and the endpoint list without checking anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return preflight(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func preflight(opts *rootOptions, stdout, stderr io.Writer) error {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fail(err.Error())
		return errPreflight
	}
	if opts.endpoints != "" {
		cfg.EndpointsFile = opts.endpoints
	}
	ok(fmt.Sprintf("config loaded (timeout=%s, concurrency=%d, retry_attempts=%d)",
		cfg.Check.Timeout, cfg.Check.Concurrency, cfg.Check.RetryAttempts))
	ok("LOG_DIR=" + cfg.Log.Dir)

	endpoints, err := targets.Load(cfg.EndpointsFile)
	if err != nil {
		fail(err.Error())
	} else {
		if len(endpoints) == 0 {
			warn(cfg.EndpointsFile + " is empty; nothing will be checked.")
		}
		invalid := 0
		for i, ep := range endpoints {
			if err := ep.Validate(); err != nil {
				invalid++
				fail(fmt.Sprintf("endpoint #%d (%q): %v", i+1, ep.Name, err))
				continue
			}
			if err := domain.ValidateURL(ep.URL); err != nil {
				warn(fmt.Sprintf("endpoint #%d (%q): %v; this check will report DOWN", i+1, ep.Name, err))
			}
		}
		if invalid == 0 {
			ok(fmt.Sprintf("%s: %d endpoint(s)", cfg.EndpointsFile, len(endpoints)))
		}
	}

	if u, set := cfg.Alert.Webhook(); set {
		if err := domain.ValidateURL(u); err != nil {
			fail("ALERT_WEBHOOK_URL invalid: " + err.Error() + "; alerts will not be delivered.")
		} else {
			ok("ALERT_WEBHOOK_URL present (" + redact(u) + ")")
		}
	} else {
		warn("ALERT_WEBHOOK_URL empty; failures will only be logged.")
	}
	if len(cfg.Alert.Kafka.Brokers) > 0 {
		ok(fmt.Sprintf("Kafka alerts -> %s on %v", cfg.Alert.Kafka.Topic, cfg.Alert.Kafka.Brokers))
	}

	if failed {
		return errPreflight
	}
	ok("preflight passed")
	return nil
}

// redact keeps the scheme and host of a webhook URL; the path usually
// carries the secret.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unparsable"
	}
	return u.Scheme + "://" + u.Host + "/…"
}
