package xmpp

import (
	"errors"
	"testing"
)

func TestServerName(t *testing.T) {
	tests := map[string]string{
		"bridge@ship.example.org":          "ship.example.org",
		"bridge@ship.example.org/resource": "ship.example.org",
		"bridge":                           "",
	}
	for jid, want := range tests {
		if got := serverName(jid); got != want {
			t.Errorf("serverName(%q) = %q; want %q", jid, got, want)
		}
	}
}

func TestSendMissingConfig(t *testing.T) {
	x := Xmpp{Config: Config{Jid: "bridge@ship.example.org"}}
	if err := x.Send("hello"); !errors.Is(err, ErrMissingConfig) {
		t.Errorf("Send() = %v; want %v", err, ErrMissingConfig)
	}

	x = Xmpp{Config: Config{Jid: "bridge", Password: "secret", To: "master@ship.example.org"}}
	if err := x.Send("hello"); !errors.Is(err, ErrMissingConfig) {
		t.Errorf("Send() without host = %v; want %v", err, ErrMissingConfig)
	}
}

func TestHost(t *testing.T) {
	c := Config{Jid: "bridge@ship.example.org"}
	if h := c.host(); h != "ship.example.org:5222" {
		t.Errorf("host() = %q; want ship.example.org:5222", h)
	}
	c.Host = "xmpp.example.org:5223"
	if h := c.host(); h != "xmpp.example.org:5223" {
		t.Errorf("host() = %q; want xmpp.example.org:5223", h)
	}
}
