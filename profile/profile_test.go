package profile

import (
	"errors"
	"slices"
	"testing"
)

func TestStart_EmptyMode(t *testing.T) {
	t.Parallel()

	stop, err := Start(WithDir(t.TempDir()), WithQuiet(true))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	stop.Stop()
	stop.Stop()
}

func TestOptions(t *testing.T) {
	t.Parallel()

	var c config
	for _, opt := range []Option{
		WithMode("cpu"),
		WithDir("/tmp/x"),
		WithQuiet(true),
		WithMode("heap"),
	} {
		c = opt(c)
	}

	want := config{mode: "heap", dir: "/tmp/x", quiet: true}
	if c != want {
		t.Errorf("config = %+v, want %+v", c, want)
	}
}

func TestStart_UnknownMode(t *testing.T) {
	t.Parallel()

	_, err := Start(WithMode("bogus"))
	if err == nil {
		t.Fatal("Start(bogus) succeeded")
	}

	if slices.Contains(Modes(), "cpu") {
		if !errors.Is(err, ErrUnknownMode) {
			t.Errorf("error = %v, want ErrUnknownMode", err)
		}
	} else if !errors.Is(err, ErrDisabled) {
		t.Errorf("error = %v, want ErrDisabled", err)
	}
}
