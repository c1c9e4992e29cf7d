// Package preprocess maps arbitrary input values to fixed-length normalized vectors.
//
// Every supported shape is represented by the Input tagged variant:
//
//	| Kind     | Raw numeric sequence                               |
//	|----------|----------------------------------------------------|
//	| Text     | UTF-8 byte values                                  |
//	| Bytes    | byte values                                        |
//	| Mapping  | byte values of the key-sorted canonical JSON       |
//	| Sequence | flattened elements as float64                      |
//	| Numeric  | the values themselves                              |
//	| Other    | byte values of fmt.Sprint(v)                       |
//
// The raw sequence is min-max normalized to [0, 1] and resized to Dimension (768)
// by cyclic wraparound or truncation.
//
// Preprocess never returns an error. Any conversion failure produces the zero
// vector so callers always receive a usable fixed-length vector.
//
//	v := preprocess.Preprocess(preprocess.Bytes([]byte("Hi")))
//	len(v) // 768
package preprocess
