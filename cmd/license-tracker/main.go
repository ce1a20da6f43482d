package main

import (
	"os"

	"github.com/psds-microservice/license-tracker/cmd"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}
