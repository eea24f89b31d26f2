package credential

import (
	"crypto/sha256"
	"testing"
)

func TestHashOrderMatters(t *testing.T) {
	a := sha256.Sum256([]byte("a"))
	b := sha256.Sum256([]byte("b"))

	var c1, c2 Composite
	c1.Add(a)
	c1.Add(b)
	c2.Add(b)
	c2.Add(a)

	if c1.Hash() == c2.Hash() {
		t.Error("Hash should depend on member order")
	}
}

func TestFromPasswordWithKeyFile(t *testing.T) {
	keyHash := sha256.Sum256([]byte{0x00, 0x01, 0x02})
	c := FromPassword("pwd").WithKeyFile(keyHash)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	pwHash := sha256.Sum256([]byte("pwd"))
	want := sha256.Sum256(append(append([]byte{}, pwHash[:]...), keyHash[:]...))
	if c.Hash() != want {
		t.Error("Hash() did not match sha(sha(\"pwd\") || keyHash)")
	}
}

func TestSingleMemberHash(t *testing.T) {
	var c Composite
	h := sha256.Sum256([]byte("solo"))
	c.Add(h)
	want := sha256.Sum256(h[:])
	if c.Hash() != want {
		t.Error("single-member composite hash should be SHA-256 of that member")
	}
}
