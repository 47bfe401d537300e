// +build integration

package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kalyan021004/todoboard/internal/infra/server"
)

func Test_Server_Setup(t *testing.T) {
	setup := server.NewSetup(esClient)

	err := setup.RunIfNeeded(ctx)
	assert.NoError(t, err)

	err = setup.Check(ctx)
	assert.NoError(t, err)
}
