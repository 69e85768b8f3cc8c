package tg

import (
	"errors"
	"testing"
)

func TestIsSystemErr(t *testing.T) {
	cases := []struct {
		err  string
		want bool
	}{
		{"Too Many Requests: retry after 5 (429)", true},
		{"Post https://api.telegram.org: timeout", true},
		{"Bad Request: message is not modified", false},
		{"Bad Request: can't parse entities", false},
		{"Forbidden: bot was blocked by the user", false},
	}
	for _, c := range cases {
		if got := isSystemErr(errors.New(c.err)); got != c.want {
			t.Errorf("isSystemErr(%q) = %v, want %v", c.err, got, c.want)
		}
	}
	if isSystemErr(nil) {
		t.Error("nil is not a system error")
	}
}

func TestIsNotModified(t *testing.T) {
	if !IsNotModified(errors.New("Bad Request: message is not modified: specified new message content")) {
		t.Fatal("want true")
	}
	if IsNotModified(nil) {
		t.Fatal("nil must be false")
	}
}
