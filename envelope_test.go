package kdbx

import (
	"bytes"
	"testing"

	"github.com/kdbxvault/kdbx/pkg/credential"
	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

func TestSerializeDeserializeEnvelopeRoundTrip(t *testing.T) {
	db := sampleDatabase(t)
	cred := credential.FromPassword(CachePassword("correct horse battery staple"))

	b, err := SerializeEnvelope([]byte("dbfile-digest-bytes"), nil, db, cred, DefaultFilter())
	if err != nil {
		t.Fatalf("SerializeEnvelope: %v", err)
	}

	env, err := DeserializeEnvelope(bytes.NewReader(b), cred)
	if err != nil {
		t.Fatalf("DeserializeEnvelope: %v", err)
	}
	if env.Type != EnvelopeKdbx {
		t.Fatalf("Type = %v, want EnvelopeKdbx", env.Type)
	}
	if env.DB == nil {
		t.Fatal("expected a projected database")
	}
	if env.DB.Name != db.Name {
		t.Errorf("DB.Name = %q, want %q", env.DB.Name, db.Name)
	}
	e := env.DB.Groups[0].Entries[0]
	if e.Password.Reveal() != "" {
		t.Error("DefaultFilter should have excluded the password from the cached projection")
	}
}

func TestSerializeEnvelopeNoDatabase(t *testing.T) {
	cred := credential.FromPassword("k")
	b, err := SerializeEnvelope([]byte("digest"), nil, nil, cred, DefaultFilter())
	if err != nil {
		t.Fatalf("SerializeEnvelope: %v", err)
	}
	env, err := DeserializeEnvelope(bytes.NewReader(b), cred)
	if err != nil {
		t.Fatalf("DeserializeEnvelope: %v", err)
	}
	if env.Type != EnvelopeNone {
		t.Errorf("Type = %v, want EnvelopeNone", env.Type)
	}
	if env.DB != nil {
		t.Error("expected no database when SerializeEnvelope was given a nil Database")
	}
}

func TestDeserializeEnvelopeTamperedBodyFails(t *testing.T) {
	// Flip a ciphertext byte 100 bytes from the end. Under CBC this garbles
	// one 16-byte plaintext block inside the JSON payload of the hashed
	// block stream (the last 40 plaintext bytes before padding are the
	// terminator record), so decryption fails the block digest check.
	cred := credential.FromPassword("k")
	db := sampleDatabase(t)
	b, err := SerializeEnvelope([]byte("digest"), nil, db, cred, DefaultFilter())
	if err != nil {
		t.Fatalf("SerializeEnvelope: %v", err)
	}
	tampered := append([]byte{}, b...)
	tampered[len(tampered)-100] ^= 0xff

	_, err = DeserializeEnvelope(bytes.NewReader(tampered), cred)
	if err == nil {
		t.Fatal("expected an error for a tampered envelope")
	}
}

func TestDeserializeEnvelopeWrongCredential(t *testing.T) {
	db := sampleDatabase(t)
	b, err := SerializeEnvelope([]byte("digest"), nil, db, credential.FromPassword("k"), DefaultFilter())
	if err != nil {
		t.Fatalf("SerializeEnvelope: %v", err)
	}
	_, err = DeserializeEnvelope(bytes.NewReader(b), credential.FromPassword("not-k"))
	if err == nil {
		t.Fatal("expected an error for a mismatched credential")
	}
	if ke, ok := err.(*kdbxerr.Error); !ok || ke.Kind != kdbxerr.BadCredential {
		t.Errorf("err = %v, want BadCredential", err)
	}
}

func TestCachePassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"abcd", "ab"},
		{"abcdefgh", "abcd"},
	}
	for _, tt := range tests {
		if got := CachePassword(tt.in); got != tt.want {
			t.Errorf("CachePassword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
