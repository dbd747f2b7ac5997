package wikicorpus

// DefaultMaxShardBytes is the reference shard budget: no output shard
// should exceed 128 MiB.
const DefaultMaxShardBytes = 128 << 20

// NumShards computes how many shards a run's output should be split
// into, from the summed byte size of the inputs and the per-shard
// budget.  Always at least one.
func NumShards(totalInputBytes, maxShardBytes int64) int {
	if maxShardBytes <= 0 {
		maxShardBytes = DefaultMaxShardBytes
	}
	if totalInputBytes <= 0 {
		return 1
	}
	n := totalInputBytes / maxShardBytes
	if totalInputBytes%maxShardBytes != 0 {
		n++
	}
	return int(n)
}

// ShardRecords partitions records into n contiguous, near-even shards
// for a downstream store.  Record order within a shard is preserved.
func ShardRecords(records []CleanedRecord, n int) [][]CleanedRecord {
	if n < 1 {
		n = 1
	}
	shards := make([][]CleanedRecord, n)
	if len(records) == 0 {
		return shards
	}
	per := (len(records) + n - 1) / n
	for i := range shards {
		lo := i * per
		if lo >= len(records) {
			break
		}
		hi := lo + per
		if hi > len(records) {
			hi = len(records)
		}
		shards[i] = records[lo:hi]
	}
	return shards
}
