//go:build !pprof

package profile

// Modes returns nil when built without the pprof tag.
func Modes() []string { return nil }

func start(c config) (Stopper, error) {
	if c.mode != "" {
		return nil, ErrDisabled
	}

	return ignore{}, nil
}
