// Package serializer turns common.Message values into bytes and back.
//
// Three formats are available, selected with the --serializer flag:
//
//   - binary: one flag byte marks the present optional fields (key, value, keys,
//     text, ok, count, error, meta), followed by length-prefixed payloads.
//     Smallest and fastest, the default.
//   - json: readable on the wire, handy when debugging with curl against the
//     http transport.
//   - gob: encoding/gob. Zero values are not transmitted, so a ping with an
//     empty text arrives as a ping without text and is rejected by the server.
//
// Deserialize always resets the target message first, so a message value can be
// reused between calls. All implementations are safe for concurrent use.
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewGetRequest("a"))
//	...
//	var msg common.Message
//	err = s.Deserialize(data, &msg)
//
// The benchmarks in this package compare the formats for every message kind.
package serializer
