package common

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"

	SUCCESS = "success"
	FAILED  = "failed"
)

const TimeLayout = "2006-01-02 15:04:05"

var (
	sfNode     *snowflake.Node
	sfNodeOnce sync.Once
)

func node() *snowflake.Node {
	sfNodeOnce.Do(func() {
		// the node number only has to be unique across concurrently running instances
		n, err := snowflake.NewNode(time.Now().UnixNano() % 1024)
		if err != nil {
			panic(err)
		}
		sfNode = n
	})
	return sfNode
}

// UUIDint64 returns a time ordered unique int64 id.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// IfEmptyStr returns defval when src is blank.
func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}

// InSlice reports whether v is one of the items.
func InSlice(v string, items []string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
