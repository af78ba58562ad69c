package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/netip"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/imgurbot12/pystructs"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("pystructs: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("pystructs: CBOR decoder initialization failed: " + err.Error())
	}
}

// normalize converts parsed documents into values the integer codecs
// accept: JSON numbers and integral floats become integers.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalize(item)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if n, ok := new(big.Int).SetString(string(v), 10); ok {
			return n
		}
		f, _ := v.Float64()
		return normalize(f)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<63 {
			return int64(v)
		}
	}
	return v
}

// render converts decoded values for output. Records keep their field
// order when ordered is set, otherwise they become maps.
func render(v any, ordered bool) any {
	switch v := v.(type) {
	case pystructs.Record:
		if !ordered {
			m := make(map[string]any, len(v))
			for _, fv := range v {
				m[fv.Name] = render(fv.Value, ordered)
			}
			return m
		}
		obj := make(object, len(v))
		for i, fv := range v {
			obj[i] = pair{key: fv.Name, value: render(fv.Value, ordered)}
		}
		return obj
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = render(item, ordered)
		}
		return out
	case []byte:
		if !ordered {
			return v
		}
		if printable(v) {
			return string(v)
		}
		return hex.EncodeToString(v)
	case netip.Addr:
		return v.String()
	case *big.Int:
		if v.IsInt64() {
			return v.Int64()
		}
		if v.IsUint64() {
			return v.Uint64()
		}
		return v.String()
	}
	return v
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

type pair struct {
	key   string
	value any
}

// object is a mapping that keeps its keys in wire order.
type object []pair

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range o {
		var value yaml.Node
		if err := value.Encode(p.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.key},
			&value,
		)
	}
	return node, nil
}
