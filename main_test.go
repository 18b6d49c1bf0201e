package main

import (
	"testing"
)

func TestNewApp(t *testing.T) {
	app := newApp()

	if app.Name != "chatty" {
		t.Errorf("Name = %q, want chatty", app.Name)
	}
	if app.Action == nil {
		t.Fatal("Action is nil")
	}

	names := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, want := range []string{"data-dir", "d", "format", "f", "output", "o", "registry-id", "lenient", "config", "quiet", "verbose"} {
		if !names[want] {
			t.Errorf("flag %q not registered", want)
		}
	}
}
