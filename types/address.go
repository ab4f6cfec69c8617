package types

// Address identifies a principal. The engine treats addresses as opaque
// strings. The empty string is the null address: it never holds a
// balance and appears only as the counterparty of mint and burn
// transfers.
type Address string

// NilAddress is the null address.
const NilAddress Address = ""

func (a Address) String() string {
	return string(a)
}

// IsNil reports whether a is the null address.
func (a Address) IsNil() bool {
	return a == NilAddress
}
