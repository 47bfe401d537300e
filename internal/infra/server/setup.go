package server

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/infra/elasticsearch/index"
)

// Setup abstracts away:
//
// 1. Setting up the environment for running the board server
// 2. Checking that things are set up
type Setup interface {

	// Check returns an error if all the necessary setup is not complete
	Check(ctx context.Context) error

	// RunIfNeeded attempts to run the subroutines necessary, no more no less
	RunIfNeeded(ctx context.Context) error
}

type impl struct {
	templateSetup index.TemplatesSetup
}

// NewSetup returns a Setup implementation
func NewSetup(esClient *elasticsearch.Client) Setup {
	return &impl{
		templateSetup: index.DefaultTemplateSetup(esClient),
	}
}

func (i *impl) Check(ctx context.Context) error {
	return i.templateSetup.Check(ctx)
}

func (i *impl) RunIfNeeded(ctx context.Context) error {
	if err := i.templateSetup.Check(ctx); err != nil {
		if _, templateNotFound := err.(index.TemplatesNotInstalled); templateNotFound {
			log.Info().Msg("Setting up Index templates")
			if err := i.templateSetup.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to install index templates")
				return err
			}
		} else {
			return err
		}
	}

	log.Info().Msg("Setup complete")
	return nil
}
