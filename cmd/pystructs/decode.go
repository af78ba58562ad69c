package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/imgurbot12/pystructs"
	"github.com/imgurbot12/pystructs/pkg/compactwire"
	"github.com/imgurbot12/pystructs/pkg/schema"
)

func decode(o *options, s *schema.Schema, args []string, stdin io.Reader, stdout io.Writer) error {
	st, err := s.Struct(o.name)
	if err != nil {
		return err
	}
	enc, err := newEncoder(o.format, stdout)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	results := make([]any, len(args))
	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(runtime.NumCPU())
	for i, path := range args {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := decodeFile(o, st, path, stdin)
			if err != nil {
				return errors.Wrap(err, path)
			}
			results[i] = render(v, o.format != "cbor")
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "write output")
		}
	}
	return enc.Close()
}

func decodeFile(o *options, st *pystructs.Struct, path string, stdin io.Reader) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if o.hex {
		if data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), "")); err != nil {
			return nil, errors.Wrap(err, "hex input")
		}
	}
	if o.frame {
		frame, err := compactwire.DecodeDataFrame(data)
		if err != nil {
			return nil, err
		}
		data = frame.Payload
	}
	unmarshal := pystructs.Unmarshal
	if o.strict {
		unmarshal = pystructs.UnmarshalStrict
	}
	v, err := unmarshal(st, data)
	if err != nil {
		return nil, err
	}
	pystructs.Logger().Debug("decoded message",
		zap.String("file", path), zap.String("struct", st.Name), zap.Int("bytes", len(data)))
	return v, nil
}

type documentEncoder interface {
	Encode(v any) error
	Close() error
}

type jsonEncoder struct{ *json.Encoder }

func (jsonEncoder) Close() error { return nil }

type cborEncoder struct{ enc interface{ Encode(any) error } }

func (c cborEncoder) Encode(v any) error { return c.enc.Encode(v) }
func (cborEncoder) Close() error { return nil }

func newEncoder(format string, w io.Writer) (documentEncoder, error) {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return enc, nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return jsonEncoder{enc}, nil
	case "cbor":
		return cborEncoder{cborEnc.NewEncoder(w)}, nil
	}
	return nil, errors.Errorf("unknown output format %q", format)
}
