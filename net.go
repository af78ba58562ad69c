package pystructs

import (
	"bytes"
	"encoding/hex"
	"net"
	"net/netip"
	"strings"
)

// IPv4 is a 4 byte packed IPv4 address.
type IPv4 struct{}

func (IPv4) String() string { return "ipv4" }
func (IPv4) FixedSize() int { return 4 }
func (IPv4) Accepts(v any) bool { return isAddr(v) }

func (c IPv4) Encode(ctx *Context, value any) ([]byte, error) {
	addr, err := toAddr(c, value)
	if err != nil {
		return nil, err
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return nil, newError(KindInvalidValue, value, "%s is not an IPv4 address", addr)
	}
	packed := addr.As4()
	return ctx.TrackBytes(packed[:]), nil
}

func (c IPv4) Decode(ctx *Context, raw []byte) (any, error) {
	data := ctx.Slice(raw, 4)
	if len(data) != 4 {
		return nil, shortBuffer(c.String(), 4, len(data))
	}
	return netip.AddrFrom4([4]byte(data)), nil
}

// IPv6 is a 16 byte packed IPv6 address. IPv4 input is written in its
// IPv4-mapped form.
type IPv6 struct{}

func (IPv6) String() string { return "ipv6" }
func (IPv6) FixedSize() int { return 16 }
func (IPv6) Accepts(v any) bool { return isAddr(v) }

func (c IPv6) Encode(ctx *Context, value any) ([]byte, error) {
	addr, err := toAddr(c, value)
	if err != nil {
		return nil, err
	}
	packed := addr.As16()
	return ctx.TrackBytes(packed[:]), nil
}

func (c IPv6) Decode(ctx *Context, raw []byte) (any, error) {
	data := ctx.Slice(raw, 16)
	if len(data) != 16 {
		return nil, shortBuffer(c.String(), 16, len(data))
	}
	return netip.AddrFrom16([16]byte(data)), nil
}

func isAddr(value any) bool {
	switch value.(type) {
	case string, []byte, net.IP, netip.Addr:
		return true
	}
	return false
}

func toAddr(c Codec, value any) (netip.Addr, error) {
	var (
		addr netip.Addr
		ok   bool
	)
	switch v := value.(type) {
	case netip.Addr:
		addr, ok = v, v.IsValid()
	case string:
		a, err := netip.ParseAddr(v)
		addr, ok = a, err == nil
	case net.IP:
		addr, ok = netip.AddrFromSlice(v)
	case []byte:
		addr, ok = netip.AddrFromSlice(v)
	default:
		return addr, newError(KindTypeMismatch, value, "%v cannot encode %T", c, value)
	}
	if !ok {
		return addr, newError(KindInvalidValue, value, "%v invalid address %v", c, value)
	}
	return addr.WithZone(""), nil
}

// MacAddr is a 6 byte hardware address rendered as aa:bb:cc:dd:ee:ff.
type MacAddr struct{}

var macSeparators = strings.NewReplacer(":", "", ".", "", "-", "")

func (MacAddr) String() string { return "mac" }
func (MacAddr) FixedSize() int { return 6 }

func (MacAddr) Accepts(value any) bool {
	switch value.(type) {
	case string, net.HardwareAddr:
		return true
	}
	return false
}

func (c MacAddr) Encode(ctx *Context, value any) ([]byte, error) {
	var content []byte
	switch v := value.(type) {
	case net.HardwareAddr:
		content = bytes.Clone(v)
	case string:
		b, err := hex.DecodeString(macSeparators.Replace(v))
		if err != nil {
			return nil, newError(KindInvalidValue, value, "invalid mac %q", v)
		}
		content = b
	default:
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", c, value)
	}
	if len(content) != 6 {
		return nil, newError(KindInvalidValue, value, "mac must be 6 bytes, got %d", len(content))
	}
	return ctx.TrackBytes(content), nil
}

func (c MacAddr) Decode(ctx *Context, raw []byte) (any, error) {
	data := ctx.Slice(raw, 6)
	if len(data) != 6 {
		return nil, shortBuffer(c.String(), 6, len(data))
	}
	return net.HardwareAddr(data).String(), nil
}
