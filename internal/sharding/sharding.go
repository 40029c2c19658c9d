package sharding

import (
	"fmt"
	"hash/crc32"
)

// ShardCount is the fixed number of partitions for event subjects.
const ShardCount = 1024

// GetShardID calculates the deterministic shard ID for a given entity ID.
func GetShardID(entityID string) int {
	checksum := crc32.ChecksumIEEE([]byte(entityID))
	return int(checksum % ShardCount)
}

// EventSubject returns the NATS subject for a committed event.
// Format: app.event.{shard_id}.entity.{entity_id}
func EventSubject(entityID string) string {
	return fmt.Sprintf("app.event.%d.entity.%s", GetShardID(entityID), entityID)
}
