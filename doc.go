// Package vecid turns arbitrary input values into small, deterministic identity
// payloads.
//
// A payload combines two channels computed from a 768-value normalized vector:
//
//   - a symbolic channel: a 32-byte positional fingerprint produced by repeated
//     XOR, rotate and multiply passes folded into 32 chunks
//   - an entropy channel: 16 statistics of the vector's frequency spectrum
//
// Both channels can be decoded and merged into an approximation of the normalized
// vector. The pipeline is lossy; reconstruction quality is measured as mean squared
// error and the optimizer searches pass counts to minimize it.
//
// # Quick Start
//
//	e, err := vecid.New(vecid.WithLogLevel(slog.LevelInfo))
//	if err != nil {
//	    panic(err)
//	}
//
//	p, err := e.EncodeInput(ctx, preprocess.Text("Hi"))
//	compact, err := e.Serialize(p) // 65 bytes
//
// Authenticate a payload with an HMAC envelope:
//
//	env, err := e.Sign(p, []byte("secret"))
//	p, err = e.Verify(ctx, env, []byte("secret"))
//
// # Error Handling
//
// Engine methods return errors matching ErrValidation for malformed payloads,
// vectors and keys, and ErrAuthentication for envelopes that fail verification.
// The underlying error remains available through errors.Is and errors.As:
//
//	if errors.Is(err, vecid.ErrAuthentication) {
//	    var ae *envelope.AuthError
//	    if errors.As(err, &ae) {
//	        log.Println(ae.Reason)
//	    }
//	}
//
// # Packages
//
// The pipeline stages live in their own packages (preprocess, symbolic, entropy,
// reconstruct, optimizer, payload, envelope, hashing) and can be used without the
// Engine. Persistence is provided by store on top of the blobstore backends.
package vecid
