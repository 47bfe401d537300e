// +build integration

package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kalyan021004/todoboard/internal/infra/elasticsearch/index"
)

func Test_TemplatesSetup_installs_and_verifies(t *testing.T) {
	templates := index.DefaultTemplateSetup(esClient)

	assert.NoError(t, templates.Run(ctx))
	assert.NoError(t, templates.Check(ctx))

	// Installing is idempotent.
	assert.NoError(t, templates.Run(ctx))
	assert.NoError(t, templates.Check(ctx))
}
