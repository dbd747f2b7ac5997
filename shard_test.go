package wikicorpus

import "testing"

func TestNumShards(t *testing.T) {
	tests := []struct {
		total, max int64
		want       int
	}{
		{0, 0, 1},
		{1, 0, 1},
		{DefaultMaxShardBytes, 0, 1},
		{DefaultMaxShardBytes + 1, 0, 2},
		{500, 100, 5},
		{501, 100, 6},
		{5 * DefaultMaxShardBytes, 0, 5},
	}
	for _, tc := range tests {
		if got := NumShards(tc.total, tc.max); got != tc.want {
			t.Errorf("NumShards(%d, %d) = %d, want %d",
				tc.total, tc.max, got, tc.want)
		}
	}
}

func TestShardRecords(t *testing.T) {
	records := make([]CleanedRecord, 7)
	for i := range records {
		records[i].ID = string(rune('a' + i))
	}

	shards := ShardRecords(records, 3)
	if len(shards) != 3 {
		t.Fatalf("Expected 3 shards, got %d", len(shards))
	}
	wantSizes := []int{3, 3, 1}
	seen := 0
	for i, s := range shards {
		if len(s) != wantSizes[i] {
			t.Errorf("Shard %d: size %d, want %d", i, len(s), wantSizes[i])
		}
		for _, rec := range s {
			if rec.ID != records[seen].ID {
				t.Errorf("Record order disturbed at %d: %q", seen, rec.ID)
			}
			seen++
		}
	}
	if seen != len(records) {
		t.Errorf("Sharding lost records: saw %d of %d", seen, len(records))
	}
}

func TestShardRecordsEdges(t *testing.T) {
	if got := ShardRecords(nil, 3); len(got) != 3 {
		t.Errorf("Expected 3 empty shards, got %v", got)
	}
	shards := ShardRecords(make([]CleanedRecord, 2), 0)
	if len(shards) != 1 || len(shards[0]) != 2 {
		t.Errorf("Expected everything in one shard, got %v", shards)
	}
}
