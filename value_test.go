package kdbx

import "testing"

func TestPlainValueReveal(t *testing.T) {
	v := PlainValue("hunter2")
	if v.Reveal() != "hunter2" {
		t.Errorf("Reveal() = %q, want hunter2", v.Reveal())
	}
}

func TestProtectedValueReveal(t *testing.T) {
	plain := []byte("hunter2")
	ks := []byte{9, 8, 7, 6, 5, 4, 3}
	cipher := make([]byte, len(plain))
	for i := range cipher {
		cipher[i] = plain[i] ^ ks[i]
	}
	v := ProtectedValue{Cipher: cipher, Keystream: ks}
	if v.Reveal() != "hunter2" {
		t.Errorf("Reveal() = %q, want hunter2", v.Reveal())
	}
}

func TestValueInterfaceIsSealed(t *testing.T) {
	var values []Value = []Value{PlainValue("x"), ProtectedValue{}}
	if len(values) != 2 {
		t.Fatal("expected both variants to satisfy Value")
	}
}
