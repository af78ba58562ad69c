package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/imgurbot12/pystructs"
	"github.com/imgurbot12/pystructs/pkg/compactwire"
	"github.com/imgurbot12/pystructs/pkg/schema"
)

func encode(o *options, s *schema.Schema, args []string, stdin io.Reader, stdout io.Writer) error {
	st, err := s.Struct(o.name)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return errors.Errorf("encode takes one value file, got %d", len(args))
	}
	data, err := readInput(args, stdin)
	if err != nil {
		return err
	}
	value, err := parseValue(o.input, data)
	if err != nil {
		return err
	}
	raw, err := pystructs.Marshal(st, value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", st.Name)
	}
	if o.frame {
		if raw, err = compactwire.EncodeDataFrame(raw, 0, nil); err != nil {
			return err
		}
	}
	pystructs.Logger().Info("encoded message",
		zap.String("struct", st.Name), zap.Int("bytes", len(raw)), zap.Bool("framed", o.frame))

	if o.hex {
		raw = append([]byte(hex.EncodeToString(raw)), '\n')
	}
	if o.output != "" {
		return errors.Wrap(os.WriteFile(o.output, raw, 0o644), "write output")
	}
	_, err = stdout.Write(raw)
	return err
}

func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		return data, errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(args[0])
	return data, errors.Wrap(err, "read input")
}

// parseValue decodes a value document into the shapes Struct.Encode accepts.
func parseValue(format string, data []byte) (any, error) {
	var v any
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "parse yaml value")
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrap(err, "parse json value")
		}
	case "cbor":
		if err := cborDec.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "parse cbor value")
		}
	default:
		return nil, errors.Errorf("unknown input format %q", format)
	}
	return normalize(v), nil
}
