package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDint64Unique(t *testing.T) {
	const n = 2000
	var mu sync.Mutex
	seen := make(map[int64]struct{}, n)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n/4; j++ {
				id := UUIDint64()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestIfEmptyStr(t *testing.T) {
	assert.Equal(t, NA, IfEmptyStr("  ", NA))
	assert.Equal(t, "x", IfEmptyStr("x", NA))
}

func TestInSlice(t *testing.T) {
	assert.True(t, InSlice("csv", []string{"csv", "xlsx"}))
	assert.False(t, InSlice("pdf", []string{"csv", "xlsx"}))
}
