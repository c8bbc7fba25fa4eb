package xmpp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-xmpp"
	log "github.com/sirupsen/logrus"
)

var ErrMissingConfig = errors.New("missing xmpp config")

type (
	// Config for the alarm channel.
	Config struct {
		Host     string
		Jid      string
		Password string
		To       string
	}

	Xmpp struct {
		Config Config
	}
)

func serverName(jid string) string {
	parts := strings.SplitN(jid, "@", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.SplitN(parts[1], "/", 2)[0]
}

// Enabled reports whether enough is configured to send messages.
func (c Config) Enabled() bool {
	return len(c.Jid) > 0 && len(c.Password) > 0 && len(c.To) > 0
}

func (c Config) host() string {
	if len(c.Host) > 0 {
		return c.Host
	}
	if s := serverName(c.Jid); s != "" {
		return s + ":5222"
	}
	return ""
}

func (c Config) options() (xmpp.Options, error) {
	if !c.Enabled() {
		return xmpp.Options{}, ErrMissingConfig
	}
	host := c.host()
	if host == "" {
		return xmpp.Options{}, fmt.Errorf("%w: no host for jid %q", ErrMissingConfig, c.Jid)
	}

	return xmpp.Options{
		Host:          host,
		User:          c.Jid,
		Password:      c.Password,
		NoTLS:         true,
		StartTLS:      true,
		Debug:         false,
		Session:       false,
		Status:        "xa",
		StatusMessage: "Watching the radar",
	}, nil
}

// Send delivers message to the configured recipient.
func (x Xmpp) Send(message string) error {
	options, err := x.Config.options()
	if err != nil {
		log.WithError(err).Warn("Cannot send xmpp message")
		return err
	}

	xmpp.DefaultConfig = tls.Config{
		ServerName: strings.Split(options.Host, ":")[0],
	}

	talk, err := options.NewClient()
	if err != nil {
		return fmt.Errorf("xmpp connect %s: %w", options.Host, err)
	}
	defer talk.Close()

	log.WithField("to", x.Config.To).Debug("Send xmpp message")
	if _, err := talk.Send(xmpp.Chat{Remote: x.Config.To, Type: "chat", Text: message}); err != nil {
		return fmt.Errorf("xmpp send: %w", err)
	}

	return nil
}
