package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/vecid"
	"github.com/hupe1980/vecid/envelope"
	"github.com/hupe1980/vecid/hashing"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/preprocess"
)

type cli struct {
	cfg    config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 1 {
		return usagef("%s: at most one input file", fs.Name())
	}
	return nil
}

func (c *cli) engine(tier payload.Tier) (*vecid.Engine, error) {
	logger := vecid.NewLogger(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: c.cfg.LogLevel}))
	return vecid.New(
		vecid.WithTier(tier),
		vecid.WithTrials(c.cfg.Trials),
		vecid.WithLogger(logger),
	)
}

// readInput reads the positional file argument, or stdin if there is none or it is "-".
func (c *cli) readInput(fs *flag.FlagSet) ([]byte, error) {
	if name := fs.Arg(0); name != "" && name != "-" {
		return os.ReadFile(name)
	}
	return io.ReadAll(c.in)
}

func (c *cli) tier(name string) (payload.Tier, error) {
	if name == "" {
		return c.cfg.Tier, nil
	}
	t, err := payload.ParseTier(name)
	if err != nil {
		return 0, usagef("%v", err)
	}
	return t, nil
}

func (c *cli) key(flagValue string) ([]byte, error) {
	k := flagValue
	if k == "" {
		k = c.cfg.Key
	}
	if k == "" {
		return nil, usagef("no key: set --key or VECID_KEY")
	}
	return []byte(k), nil
}

func checkFormat(format string) error {
	switch format {
	case "hex", "binary", "text":
		return nil
	default:
		return usagef("unknown format %q", format)
	}
}

func (c *cli) readPayload(ctx context.Context, e *vecid.Engine, data []byte, format string) (*payload.Payload, error) {
	switch format {
	case "binary":
		return e.Deserialize(ctx, data)
	case "text":
		return e.DeserializeText(ctx, data)
	default:
		b, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: payload is not hex: %v", vecid.ErrValidation, err)
		}
		return e.Deserialize(ctx, b)
	}
}

func (c *cli) writePayload(e *vecid.Engine, p *payload.Payload, format string) error {
	switch format {
	case "binary":
		b, err := e.Serialize(p)
		if err != nil {
			return err
		}
		_, err = c.out.Write(b)
		return err
	case "text":
		b, err := e.SerializeText(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out, string(b))
		return err
	default:
		b, err := e.Serialize(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out, hex.EncodeToString(b))
		return err
	}
}

func (c *cli) encode(args []string) error {
	fs := c.flagSet("encode")
	text := fs.String("text", "", "encode this string instead of reading input")
	tierName := fs.String("tier", "", "tiny, default or large (default: by input size)")
	optimize := fs.Bool("optimize", false, "search pass counts for the lowest reconstruction error")
	format := fs.String("format", "hex", "output format: hex, binary or text")
	keyFlag := fs.String("key", "", "derive a keyed entropy signature from this key")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if err := checkFormat(*format); err != nil {
		return err
	}
	if *keyFlag != "" && *optimize {
		return usagef("encode: --key cannot be combined with --optimize")
	}

	var in preprocess.Input
	if *text != "" {
		in = preprocess.Text(*text)
	} else {
		data, err := c.readInput(fs)
		if err != nil {
			return err
		}
		in = preprocess.Bytes(data)
	}

	tier, err := c.tier(*tierName)
	if err != nil {
		return err
	}
	if tier == 0 && *optimize {
		tier = payload.TierFor(preprocess.Measure(in))
	}

	e, err := c.engine(tier)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var p *payload.Payload
	if *optimize {
		res, err := e.Optimize(ctx, e.Preprocess(in))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.errOut, "mse=%.6f passes=%d trial=%d\n", res.MSE, res.Passes, res.Trial)
		p = res.Payload
	} else if *keyFlag != "" {
		if p, err = e.EncodeInputKeyed(ctx, in, []byte(*keyFlag)); err != nil {
			return err
		}
	} else if p, err = e.EncodeInput(ctx, in); err != nil {
		return err
	}

	return c.writePayload(e, p, *format)
}

func (c *cli) decode(args []string) error {
	fs := c.flagSet("decode")
	format := fs.String("format", "hex", "input format: hex, binary or text")
	reconstruct := fs.Bool("reconstruct", false, "print the reconstructed vector instead of the document")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if err := checkFormat(*format); err != nil {
		return err
	}

	data, err := c.readInput(fs)
	if err != nil {
		return err
	}
	e, err := c.engine(0)
	if err != nil {
		return err
	}

	p, err := c.readPayload(context.Background(), e, data, *format)
	if err != nil {
		return err
	}

	if *reconstruct {
		vec, err := e.Reconstruct(p)
		if err != nil {
			return err
		}
		b, err := e.Codec().Marshal(vec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out, string(b))
		return err
	}
	return c.writePayload(e, p, "text")
}

func (c *cli) sign(args []string) error {
	fs := c.flagSet("sign")
	keyFlag := fs.String("key", "", "HMAC key (default: VECID_KEY)")
	saltFlag := fs.String("salt", "", "HKDF salt (default: VECID_SALT)")
	format := fs.String("format", "hex", "input format: hex, binary or text")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if err := checkFormat(*format); err != nil {
		return err
	}

	key, err := c.key(*keyFlag)
	if err != nil {
		return err
	}
	salt := *saltFlag
	if salt == "" {
		salt = c.cfg.Salt
	}

	data, err := c.readInput(fs)
	if err != nil {
		return err
	}
	e, err := c.engine(0)
	if err != nil {
		return err
	}
	p, err := c.readPayload(context.Background(), e, data, *format)
	if err != nil {
		return err
	}

	var opts []envelope.Option
	if salt != "" {
		opts = append(opts, envelope.WithSalt([]byte(salt)))
	}
	env, err := e.Sign(p, key, opts...)
	if err != nil {
		return err
	}
	b, err := env.Marshal(e.Codec())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(b))
	return err
}

func (c *cli) verify(args []string) error {
	fs := c.flagSet("verify")
	keyFlag := fs.String("key", "", "HMAC key (default: VECID_KEY)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	key, err := c.key(*keyFlag)
	if err != nil {
		return err
	}
	data, err := c.readInput(fs)
	if err != nil {
		return err
	}
	e, err := c.engine(0)
	if err != nil {
		return err
	}

	p, err := e.Open(context.Background(), data, key)
	if err != nil {
		return err
	}
	return c.writePayload(e, p, "text")
}

func (c *cli) hash(args []string) error {
	fs := c.flagSet("hash")
	text := fs.String("text", "", "hash this string instead of reading input")
	salt := fs.String("salt", "", "salt prepended to the canonical text")
	alg := fs.String("alg", "sha256", "sha256 or sha3-256")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	a, err := hashing.ParseAlgorithm(*alg)
	if err != nil {
		return usagef("%v", err)
	}

	input := *text
	if input == "" {
		data, err := c.readInput(fs)
		if err != nil {
			return err
		}
		input = string(data)
	}

	e, err := vecid.New(vecid.WithHashAlgorithm(a))
	if err != nil {
		return err
	}
	h, err := e.Hash(preprocess.Text(input), *salt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, h)
	return err
}
