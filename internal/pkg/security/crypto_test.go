package security

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	plaintext := []byte(`{"fromId":"!a4e1f2b3"}`)

	sealed, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	opened, err := Decrypt(key, sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: %q != %q", opened, plaintext)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	other := bytes.Repeat([]byte{0x43}, KeySize)

	sealed, err := Encrypt(key, []byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(other, sealed); err == nil {
		t.Error("expected decrypt to fail with the wrong key")
	}
}

func TestDecryptTruncated(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	if _, err := Decrypt(key, []byte{0x01, 0x02}); err == nil {
		t.Error("expected decrypt to fail on truncated input")
	}
}

func TestInvalidKeyLength(t *testing.T) {
	if _, err := Encrypt([]byte("short"), []byte("payload")); err == nil {
		t.Error("expected encrypt to reject a short key")
	}
	if _, err := Decrypt([]byte("short"), []byte("payload")); err == nil {
		t.Error("expected decrypt to reject a short key")
	}
}

func TestDeriveKey(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	if len(salt) != SaltSize {
		t.Fatalf("salt length %d, want %d", len(salt), SaltSize)
	}

	a, err := DeriveKey("correct horse battery staple", salt)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(a) != KeySize {
		t.Fatalf("key length %d, want %d", len(a), KeySize)
	}

	b, err := DeriveKey("correct horse battery staple", salt)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same passphrase and salt should derive the same key")
	}

	c, err := DeriveKey("different passphrase", salt)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Error("different passphrases should derive different keys")
	}
}

func TestLoadKeyFromEnv(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	t.Setenv("MESHCAP_MASTER_KEY", hex.EncodeToString(key))

	got, generated, err := LoadKey(filepath.Join(t.TempDir(), "unused.key"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if generated {
		t.Error("env key should not count as generated")
	}
	if !bytes.Equal(got, key) {
		t.Error("env key mismatch")
	}
}

func TestLoadKeyInvalidEnv(t *testing.T) {
	t.Setenv("MESHCAP_MASTER_KEY", "not hex at all")
	if _, _, err := LoadKey(filepath.Join(t.TempDir(), "unused.key")); err == nil {
		t.Error("expected error for malformed env key")
	}
}

func TestLoadKeyGenerateAndReload(t *testing.T) {
	t.Setenv("MESHCAP_MASTER_KEY", "")
	path := filepath.Join(t.TempDir(), "meshcap.key")

	key, generated, err := LoadKey(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !generated {
		t.Error("first load should generate a key")
	}
	if len(key) != KeySize {
		t.Fatalf("key length %d, want %d", len(key), KeySize)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("key file mode %o, want 0600", perm)
	}

	again, generated, err := LoadKey(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if generated {
		t.Error("second load should read the persisted key")
	}
	if !bytes.Equal(key, again) {
		t.Error("persisted key mismatch")
	}
}
