package badger

// Key prefixes for different data types
const (
	sessionPrefix = "sess"
)

// makeSessionKey generates a key for a session by id.
func makeSessionKey(id string) []byte {
	prefix := sessionPrefix + ":"
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}
