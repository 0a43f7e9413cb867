package domain

// Zero overwrites key material and decrypted payloads once they are no longer needed.
func Zero(b []byte) {
	clear(b)
}
