package pystructs

// Context tracks position and domain-name pointers for one encode or decode pass.
//
// A Context must be owned by exactly one top-level call. Reset is the only
// supported way to reuse it; it is not safe for concurrent use.
type Context struct {
	// Index is the number of bytes produced or consumed so far.
	Index int
	// IndexToDomain maps an offset to the full domain written at it.
	IndexToDomain map[int][]byte
	// DomainToIndex is the inverse of IndexToDomain, keyed by the domain bytes.
	DomainToIndex map[string]int
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{
		IndexToDomain: make(map[int][]byte),
		DomainToIndex: make(map[string]int),
	}
}

// Reset restores the zero state so the Context can serve another message.
func (c *Context) Reset() {
	c.Index = 0
	clear(c.IndexToDomain)
	clear(c.DomainToIndex)
}

// Slice returns up to length bytes of raw starting at Index and advances
// Index by the number of bytes returned. Fewer bytes are returned at the
// end of raw; callers check the length themselves.
func (c *Context) Slice(raw []byte, length int) []byte {
	start := min(c.Index, len(raw))
	end := min(start+max(length, 0), len(raw))
	data := raw[start:end]
	c.Index += len(data)
	return data
}

// TrackBytes advances Index past data appended to the output.
func (c *Context) TrackBytes(data []byte) []byte {
	c.Index += len(data)
	return data
}

// Remaining reports how many bytes of raw have not been consumed.
func (c *Context) Remaining(raw []byte) int {
	return max(len(raw)-c.Index, 0)
}

// SaveDomain records domain as written at index in both lookup tables.
func (c *Context) SaveDomain(domain []byte, index int) {
	if c.IndexToDomain == nil {
		c.IndexToDomain = make(map[int][]byte)
		c.DomainToIndex = make(map[string]int)
	}
	c.IndexToDomain[index] = domain
	c.DomainToIndex[string(domain)] = index
}
