package util

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Pushd changes the working directory to dir and returns a function that
// restores the previous one.
func Pushd(dir string) (func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("pushd %s: %w", dir, err)
	}

	return func() {
		if err := os.Chdir(wd); err != nil {
			log.Error().Err(err).Str("dir", wd).Msg("popd")
		}
	}, nil
}
