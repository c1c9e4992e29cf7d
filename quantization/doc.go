// Package quantization provides the scalar quantizers used by vecid.
//
// Two quantizers are provided:
//
//   - ScalarQuantizer: 8 bits per dimension over a fixed range (default [0, 1]).
//     The symbolic channel uses it to turn a normalized vector into byte values.
//   - FixedPointQuantizer: 16 bits per dimension, value*scale rounded and clamped
//     to [0, 65535]. The compact payload stores entropy components this way.
//
// # Error Bounds
//
//	| Quantizer                | Bytes/dim | Max abs error      |
//	|--------------------------|-----------|--------------------|
//	| ScalarQuantizer [0,1]    | 1         | 1/510  (~0.00196)  |
//	| FixedPointQuantizer 1000 | 2         | 0.0005             |
//
// Values outside the representable range are clamped, so the bound only holds
// for in-range input.
//
// # Usage
//
//	sq := quantization.NewScalarQuantizer()
//	codes := sq.Encode(vec)
//
//	fq := quantization.NewFixedPointQuantizer(quantization.DefaultFixedPointScale)
//	buf := fq.Encode(signature[:])
//	values, _ := fq.Decode(buf)
package quantization
