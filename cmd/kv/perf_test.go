package kv

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

func TestKeySet(t *testing.T) {
	perfKeySpread = 3
	keys := newKeySet("get")

	if keys.at(0) != "__test-get-0" || keys.at(4) != "__test-get-1" {
		t.Errorf("Unexpected keys %q and %q", keys.at(0), keys.at(4))
	}
	if len(keys) != 3 {
		t.Errorf("Expected 3 keys, got %d", len(keys))
	}
}

func TestSummarize(t *testing.T) {
	if !summarize(testing.BenchmarkResult{}).skipped {
		t.Error("Expected empty result to be skipped")
	}
	sum := summarize(testing.BenchmarkResult{N: 4, T: 2000})
	if sum.skipped || sum.nsPerOp != 500 || sum.opsPerSec != 2e6 {
		t.Errorf("Unexpected summary %+v", sum)
	}
}

func TestShouldSkip(t *testing.T) {
	perfSkip = []string{"set", "ping"}
	if !shouldSkip("ping") || shouldSkip("get") {
		t.Error("Unexpected skip result")
	}
}

func TestPerfTests(t *testing.T) {
	perfKeySpread = 2
	c := newLocalClient()

	for _, test := range perfTests() {
		keys := newKeySet(test.name)
		for counter := 0; counter < 4; counter++ {
			if err := test.op(context.Background(), c, keys.at(counter), counter); err != nil {
				t.Errorf("%s: operation %d returned error: %v", test.name, counter, err)
			}
		}
	}
}

func TestWriteResultsToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := map[string]testing.BenchmarkResult{
		"set": {N: 10, T: 1000},
		"get": {},
	}
	config := &common.ClientConfig{Transport: common.ClientTransportConfig{Endpoints: []string{"a:1"}}}

	if err := writeResultsToCSV(path, results, config); err != nil {
		t.Fatalf("writeResultsToCSV returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d rows", len(rows))
	}
	if rows[1][0] != "get" || rows[1][4] != "true" {
		t.Errorf("Expected skipped get row first, got %v", rows[1])
	}
	if rows[2][0] != "set" || rows[2][1] != "100" {
		t.Errorf("Expected set row with 100ns/op, got %v", rows[2])
	}
}
