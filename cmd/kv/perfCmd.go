package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/kvgate/cmd/util"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for kvgate servers",
		Long:    "Runs parallel benchmarks (set, set-large, get, delete, ping, mixed) against a kvgate server",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfTest is a single benchmark, op is executed with the running counter of a goroutine
type perfTest struct {
	name    string
	prepare bool
	op      func(ctx context.Context, c itemClient, key string, counter int) error
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = util.ParseList(viper.GetString("skip"))

	return nil
}

// perfTests returns all benchmarks in execution order
func perfTests() []perfTest {
	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)
	pingMessage := "perf"

	return []perfTest{
		{"set", false, func(ctx context.Context, c itemClient, key string, _ int) error {
			_, err := c.SetItem(ctx, key, "test")
			return err
		}},
		{"set-large", false, func(ctx context.Context, c itemClient, key string, _ int) error {
			_, err := c.SetItem(ctx, key, largeValue)
			return err
		}},
		{"get", true, func(ctx context.Context, c itemClient, key string, _ int) error {
			_, _, err := c.GetItem(ctx, key)
			return err
		}},
		{"delete", true, func(ctx context.Context, c itemClient, key string, _ int) error {
			_, err := c.DeleteItem(ctx, key)
			return err
		}},
		{"ping", false, func(ctx context.Context, c itemClient, _ string, _ int) error {
			_, err := c.Ping(ctx, &pingMessage)
			return err
		}},
		{"mixed", true, func(ctx context.Context, c itemClient, key string, counter int) error {
			var err error
			switch counter % 4 {
			case 0: // set
				_, err = c.SetItem(ctx, key, "test")
			case 1: // get
				_, _, err = c.GetItem(ctx, key)
			case 2: // delete
				_, err = c.DeleteItem(ctx, key)
			case 3: // ping
				_, err = c.Ping(ctx, &pingMessage)
			}
			return err
		}},
	}
}

func run(cmd *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for kvgate servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	ctx := cmd.Context()
	results := make(map[string]testing.BenchmarkResult)

	for _, test := range perfTests() {
		result := runPerfTest(ctx, rpcClient, test)
		results[test.name] = result
		printResult(test.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runPerfTest runs test in parallel and removes its keys afterwards
func runPerfTest(ctx context.Context, c itemClient, test perfTest) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		if shouldSkip(test.name) {
			return
		}

		keys := newKeySet(test.name)
		if test.prepare {
			for _, k := range keys {
				if _, err := c.SetItem(ctx, k, "test"); err != nil {
					log.Printf("(%s) - error setting key: %v\n", test.name, err)
				}
			}
		}
		b.Cleanup(func() {
			if _, err := c.DeleteItem(ctx, keys...); err != nil {
				log.Printf("(%s) - error deleting keys: %v\n", test.name, err)
			}
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for n := 0; pb.Next(); n++ {
				if err := test.op(ctx, c, keys.at(n), n); err != nil {
					log.Printf("(%s) - error: %v\n", test.name, err)
				}
			}
		})
	})
}

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// keySet holds the perfKeySpread keys a benchmark works on
type keySet []string

func newKeySet(test string) keySet {
	keys := make(keySet, perfKeySpread)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, test, i)
	}
	return keys
}

// at returns the key for the n-th operation, wrapping around
func (k keySet) at(n int) string {
	return k[n%len(k)]
}

// perfSummary is the printable form of a benchmark result
type perfSummary struct {
	skipped   bool
	nsPerOp   float64
	opsPerSec float64
}

// summarize converts a result, a benchmark that never ran counts as skipped
func summarize(result testing.BenchmarkResult) perfSummary {
	if result.NsPerOp() == 0 {
		return perfSummary{skipped: true}
	}
	ns := float64(result.NsPerOp())
	return perfSummary{nsPerOp: ns, opsPerSec: 1e9 / ns}
}

func printResult(test string, result testing.BenchmarkResult) {
	sum := summarize(result)
	if sum.skipped {
		fmt.Printf("%-20sskipped\n", test)
		return
	}
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n",
		test, sum.nsPerOp, time.Duration(sum.nsPerOp), sum.opsPerSec)
}

var csvHeader = []string{
	"test", "ns_per_op", "duration_per_op", "ops_per_sec", "skipped",
	"endpoints", "timeout_sec", "retry_count", "connections_per_endpoint",
	"shard", "serializer", "transport",
	"threads", "large_value_kb", "keys",
}

// writeResultsToCSV writes one row per benchmark, sorted by name, plus the run configuration
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) (err error) {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	setup := []string{
		strings.Join(config.Transport.Endpoints, ";"),
		strconv.FormatInt(config.TimeoutSecond, 10),
		strconv.Itoa(config.Transport.RetryCount),
		strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
		strconv.FormatUint(util.GetShardID(), 10),
		viper.GetString("serializer"),
		viper.GetString("transport"),
		strconv.Itoa(perfNumThreads),
		strconv.Itoa(perfLargeValueSizeKB),
		strconv.Itoa(perfKeySpread),
	}

	rows := [][]string{csvHeader}
	for _, test := range slices.Sorted(maps.Keys(results)) {
		sum := summarize(results[test])
		row := []string{
			test,
			fmt.Sprintf("%.0f", sum.nsPerOp),
			time.Duration(sum.nsPerOp).String(),
			fmt.Sprintf("%.0f", sum.opsPerSec),
			strconv.FormatBool(sum.skipped),
		}
		rows = append(rows, append(row, setup...))
	}

	if err := csv.NewWriter(file).WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
