package hashedblock

import (
	"bytes"
	"io/ioutil"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := [][]byte{
		nil,
		[]byte("short"),
		bytes.Repeat([]byte{0x7}, BlockSize),
		bytes.Repeat([]byte{0x9}, BlockSize+100),
		bytes.Repeat([]byte{0x3}, BlockSize*3+1),
	}
	for _, payload := range tests {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		r := NewReader(&buf)
		got, err := ioutil.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(payload))
		}
		if r.IsCorrupted() {
			t.Error("IsCorrupted() = true for untampered stream")
		}
	}
}

func TestTamperedPayloadFailsStrict(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Write([]byte("hello, world"))
	w.Close()

	b := buf.Bytes()
	b[len(b)-41] ^= 0xff // corrupt the last payload byte of block 0, just before the 40-byte terminator record

	r := NewReader(bytes.NewReader(b))
	_, err := ioutil.ReadAll(r)
	if err == nil {
		t.Fatal("expected an integrity error for a tampered block")
	}
}

func TestPermissiveContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Write([]byte("hello, world"))
	w.Close()

	b := buf.Bytes()
	b[4] ^= 0xff // corrupt one byte of the digest field of block 0

	r := NewPermissiveReader(bytes.NewReader(b))
	if _, err := ioutil.ReadAll(r); err != nil {
		t.Fatalf("permissive reader should not fail: %v", err)
	}
	if !r.IsCorrupted() {
		t.Error("IsCorrupted() = false after a digest mismatch")
	}
}
