package main

// datasetgen.go is a tiny helper utility that generates a deterministic
// synthetic change-data-stream dataset for standalone benchmarking of
// streamcache (outside `go test`). It emits newline-delimited JSON
// describing one contiguous batch of records per line: which shard it
// belongs to, the sequence number its first record starts at, how many
// records it holds, and the byte size of each. Downstream load-testers
// replay these batches through PutRecords in order.
//
// Usage:
//
//	go run ./tools/datasetgen -shards 64 -batches 100000 -seed 42 -out batches.jsonl
//
// Flags:
//
//	-shards        number of distinct shard ids to spread batches across (default 64)
//	-batches       number of batches to generate (default 1e6)
//	-records-min   minimum records per batch (default 1)
//	-records-max   maximum records per batch (default 32)
//	-record-bytes  upstream-reported byte size assigned to each record (default 256)
//	-seed          RNG seed (default current time)
//	-out           output file (default stdout)
//
// © 2025 streamcache authors. MIT License.

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// batch describes one contiguous run of records appended to a shard's
// stream. Consecutive batches for the same shard are expected to chain
// (the next batch's StartSeq equals the previous one's StartSeq +
// RecordCount), matching how PutRecords accumulates a shard's segments.
type batch struct {
	Shard       uint64 `json:"shard"`
	StartSeq    int64  `json:"start_seq"`
	RecordCount int    `json:"record_count"`
	RecordBytes int64  `json:"record_bytes"`
}

func main() {
	var (
		shards      = flag.Int("shards", 64, "number of distinct shard ids")
		batches     = flag.Int("batches", 1_000_000, "number of batches to generate")
		recordsMin  = flag.Int("records-min", 1, "minimum records per batch")
		recordsMax  = flag.Int("records-max", 32, "maximum records per batch")
		recordBytes = flag.Int64("record-bytes", 256, "byte size assigned to each record")
		seedVal     = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath     = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *recordsMin <= 0 || *recordsMax < *recordsMin {
		fmt.Fprintln(os.Stderr, "records-min must be >0 and records-max >= records-min")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()
	enc := json.NewEncoder(w)

	nextSeq := make([]int64, *shards)

	for i := 0; i < *batches; i++ {
		shard := uint64(rnd.Intn(*shards))
		count := *recordsMin
		if *recordsMax > *recordsMin {
			count += rnd.Intn(*recordsMax - *recordsMin + 1)
		}
		b := batch{
			Shard:       shard,
			StartSeq:    nextSeq[shard],
			RecordCount: count,
			RecordBytes: *recordBytes,
		}
		nextSeq[shard] += int64(count)
		if err := enc.Encode(b); err != nil {
			fmt.Fprintln(os.Stderr, "encode error:", err)
			os.Exit(1)
		}
	}
}
