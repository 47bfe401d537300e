// +build integration

package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainLeader "github.com/kalyan021004/todoboard/internal/domain/leader"
	"github.com/kalyan021004/todoboard/internal/infra/apm/tracing"
	"github.com/kalyan021004/todoboard/internal/infra/elasticsearch/common"
	esLeader "github.com/kalyan021004/todoboard/internal/infra/elasticsearch/leader"
)

func buildLeaderLock(lockName string) domainLeader.Lock {
	return esLeader.NewLeaderLock(common.DocumentID(lockName), esClient, 250*time.Millisecond, 500*time.Millisecond, tracing.NoopTracer{})
}

func Test_EsLeaderLock_not_leader_before_start(t *testing.T) {
	lock := buildLeaderLock("it_lock_idle")
	assert.False(t, lock.IsLeader())
}

func Test_EsLeaderLock_acquires_and_releases(t *testing.T) {
	lock := buildLeaderLock("it_lock_single")

	lock.Start()
	assert.Eventually(t, lock.IsLeader, 3*time.Second, 300*time.Millisecond)

	lock.Stop()
	assert.False(t, lock.IsLeader())
}

func Test_EsLeaderLock_single_leader_among_contenders(t *testing.T) {
	first := buildLeaderLock("it_lock_contended")
	second := buildLeaderLock("it_lock_contended")
	third := buildLeaderLock("it_lock_contended")

	first.Start()
	assert.Eventually(t, first.IsLeader, 3*time.Second, 300*time.Millisecond)

	second.Start()
	third.Start()

	exactlyOneLeader := func() bool {
		return first.IsLeader() != second.IsLeader() != third.IsLeader()
	}
	assert.Eventually(t, exactlyOneLeader, 5*time.Second, 300*time.Millisecond)
	for i := 0; i < 1000; i++ {
		assert.True(t, exactlyOneLeader())
	}

	// The holder keeps the lock while contenders poll.
	assert.True(t, first.IsLeader())

	first.Stop()
	assert.False(t, first.IsLeader())
	second.Stop()
	assert.False(t, second.IsLeader())

	// The last contender standing takes over once the heartbeat goes stale.
	assert.Eventually(t, third.IsLeader, 5*time.Second, 300*time.Millisecond)
	third.Stop()
}
