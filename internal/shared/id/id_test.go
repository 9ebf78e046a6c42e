package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{ForwardPrefix, SubscriberPrefix, RunPrefix} {
		got := gen.GenerateWithPrefix(prefix)

		parts := strings.Split(got, "_")
		require.Len(t, parts, 2, got)
		assert.Equal(t, prefix, parts[0])

		_, err := ulid.Parse(parts[1])
		assert.NoError(t, err)
	}
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewForwardID().String(), "fwd_"))
	assert.True(t, strings.HasPrefix(NewSubscriberID().String(), "sub_"))
	assert.True(t, strings.HasPrefix(NewRunID().String(), "run_"))
	assert.True(t, strings.HasPrefix(NewRequestID().String(), "req_"))
}

func TestIDsSortByCreation(t *testing.T) {
	gen := NewGenerator()

	ids := make([]string, 200)
	for i := range ids {
		ids[i] = gen.Generate().String()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Millisecond)
	fwd := NewForwardID()
	after := time.Now().Add(time.Millisecond)

	ts, err := Timestamp(fwd.String())
	require.NoError(t, err)
	assert.True(t, ts.After(before) && ts.Before(after), "timestamp %v outside [%v, %v]", ts, before, after)

	_, err = Timestamp("fwd_not-a-ulid")
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v := gen.GenerateWithPrefix(ForwardPrefix)
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
