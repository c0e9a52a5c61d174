package serializer

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	return map[string]common.Message{
		"Empty": {
			MsgType: common.MsgTPost,
		},
		"Ping":          *common.NewPingRequest(strPtr("hello")),
		"SmallKeyOnly":  *common.NewGetRequest("k"),
		"MediumKeyOnly": *common.NewGetRequest("medium-length-key-for-testing"),
		"LargeKeyOnly": *common.NewGetRequest(
			"this-is-a-very-large-key-that-could-be-used-for-storing-data-or-as-a-document-id-in-some-cases"),
		"SmallValue":     *common.NewSetRequest("key", "v"),
		"MediumValue":    *common.NewSetRequest("key", "medium length value for testing serialization"),
		"LargeValue":     *common.NewSetRequest("key", strings.Repeat("x", 1024)),    // 1KB of data
		"VeryLargeValue": *common.NewSetRequest("key", strings.Repeat("x", 1024*16)), // 16KB of data
		"ManyKeys":       *common.NewDeleteRequest(strings.Split(strings.Repeat("key,", 99)+"key", ",")),
		"CompleteMessage": {
			MsgType: common.MsgTSet,
			Key:     "complete-test-key",
			Value:   "test-value-data",
			Keys:    []string{"a", "b"},
			Text:    strPtr("text"),
			Ok:      true,
			Count:   20000,
			Err:     "This is a test error message",
			Code:    common.ErrCodeInternal,
			Meta:    []byte("test-meta-data-for-benchmarking"),
		},
		"ErrorMessage": *common.NewErrorResponse(common.ErrCodeInternal,
			"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."),
	}
}

// BenchmarkSerializers runs encode and decode of every message for every format.
// The encode run reports the payload size as a custom "bytes" metric.
func BenchmarkSerializers(b *testing.B) {
	for name, factory := range testSerializers {
		s := factory()
		for msgName, msg := range benchmarkMessages() {
			data, err := s.Serialize(msg)
			if err != nil {
				b.Fatalf("%s: failed to serialize %s: %v", name, msgName, err)
			}

			b.Run(name+"/"+msgName+"/encode", func(b *testing.B) {
				b.ReportAllocs()
				b.ReportMetric(float64(len(data)), "bytes")
				for i := 0; i < b.N; i++ {
					if _, err := s.Serialize(msg); err != nil {
						b.Fatal(err)
					}
				}
			})

			b.Run(name+"/"+msgName+"/decode", func(b *testing.B) {
				b.ReportAllocs()
				var out common.Message
				for i := 0; i < b.N; i++ {
					if err := s.Deserialize(data, &out); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
