package domain

// Zero overwrites a byte slice with zeros. Used on unwrapped DEK material and
// freshly generated master keys once they leave scope, so plaintext keys do
// not linger in memory longer than needed.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
