package compiler

// DataKind distinguishes entries of the data side table.
type DataKind int

const (
	DataReserve DataKind = iota // uninitialised storage from the allocator
	DataString                  // null-terminated string literal
	DataBytes                   // raw initialised bytes
)

// DataDef is one data definition handed to the output formatter.
type DataDef struct {
	Kind  DataKind
	Label string
	Addr  uint16 // DataReserve only
	Size  int
	Bytes []byte // DataString and DataBytes
	Text  string // DataString source text
}

// Allocator hands out static storage with a bump pointer. Nothing is ever
// freed; temporaries recycle their addresses through the TempPool instead.
type Allocator struct {
	start uint16
	end   uint16 // inclusive
	next  int
	addrs map[string]uint16
	defs  []DataDef
}

func NewAllocator(start, end uint16) *Allocator {
	return &Allocator{
		start: start,
		end:   end,
		next:  int(start),
		addrs: make(map[string]uint16),
	}
}

// Allocate returns the address of name, reserving size bytes the first time
// the name is seen.
func (a *Allocator) Allocate(name string, size int) (uint16, error) {
	if addr, ok := a.addrs[name]; ok {
		return addr, nil
	}
	if a.next+size > int(a.end)+1 {
		return 0, &OutOfMemoryError{Name: name, Size: size, Limit: a.end}
	}
	addr := uint16(a.next)
	a.next += size
	a.addrs[name] = addr
	a.defs = append(a.defs, DataDef{Kind: DataReserve, Label: name, Addr: addr, Size: size})
	return addr, nil
}

// Address reports the address already given to name.
func (a *Allocator) Address(name string) (uint16, bool) {
	addr, ok := a.addrs[name]
	return addr, ok
}

// Used is the number of bytes handed out so far.
func (a *Allocator) Used() int {
	return a.next - int(a.start)
}

// Free is the number of bytes still available.
func (a *Allocator) Free() int {
	return int(a.end) + 1 - a.next
}

// Reservations returns the reservation directives in allocation order.
func (a *Allocator) Reservations() []DataDef {
	return append([]DataDef(nil), a.defs...)
}
