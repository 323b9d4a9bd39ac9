// Package securefile stores JSON documents on disk, either in the clear or
// sealed in a password envelope (Argon2id key derivation, XChaCha20-Poly1305).
// All writes go through a temp file and a rename.
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidPasswordOrCorrupt is deliberately generic.
var ErrInvalidPasswordOrCorrupt = errors.New("invalid password or corrupted file")

const envelopeVersion = 1

// KDF holds Argon2id parameters.
type KDF struct {
	Time    uint32 `json:"argon_time"`
	Memory  uint32 `json:"argon_memory_kib"`
	Threads uint8  `json:"argon_threads"`
	KeyLen  uint32 `json:"argon_key_len"`
}

// DefaultKDF targets interactive unlock on a laptop.
var DefaultKDF = KDF{Time: 2, Memory: 64 * 1024, Threads: 1, KeyLen: 32}

// envelope is the on-disk form of an encrypted document.
type envelope struct {
	Version int `json:"version"`
	KDF
	Salt  string `json:"salt_b64"`
	Nonce string `json:"nonce_b64"`
	CT    string `json:"ct_b64"`
}

type Options struct {
	KDF           KDF
	FilePerm      os.FileMode
	DirectoryPerm os.FileMode
	// AAD is bound into the ciphertext and must match on read.
	AAD []byte
}

func resolve(opt []Options) Options {
	o := Options{KDF: DefaultKDF, FilePerm: 0o600, DirectoryPerm: 0o700}
	if len(opt) == 0 {
		return o
	}
	in := opt[0]
	if in.KDF.KeyLen != 0 {
		o.KDF = in.KDF
	}
	if in.FilePerm != 0 {
		o.FilePerm = in.FilePerm
	}
	if in.DirectoryPerm != 0 {
		o.DirectoryPerm = in.DirectoryPerm
	}
	o.AAD = in.AAD
	return o
}

// WriteEncryptedJSON seals v under password and writes it to path.
func WriteEncryptedJSON[T any](path string, v T, password []byte, opt ...Options) error {
	o := resolve(opt)

	plain, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return errors.Wrap(err, "read salt")
	}
	aead, err := chacha20poly1305.NewX(deriveKey(password, salt, o.KDF))
	if err != nil {
		return errors.Wrap(err, "init aead")
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "read nonce")
	}

	env := envelope{
		Version: envelopeVersion,
		KDF:     o.KDF,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		CT:      base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, o.AAD)),
	}
	return WriteJSON(path, env, o.FilePerm, o.DirectoryPerm)
}

// ReadEncryptedJSON opens a document written by WriteEncryptedJSON.
func ReadEncryptedJSON[T any](path string, password []byte, opt ...Options) (T, error) {
	var zero T
	o := resolve(opt)

	env, err := ReadJSON[envelope](path)
	if err != nil {
		return zero, err
	}
	if env.Version != envelopeVersion {
		return zero, errors.Newf("unsupported envelope version %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return zero, errors.Wrap(err, "decode salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return zero, errors.Wrap(err, "decode nonce")
	}
	ct, err := base64.StdEncoding.DecodeString(env.CT)
	if err != nil {
		return zero, errors.Wrap(err, "decode ciphertext")
	}

	aead, err := chacha20poly1305.NewX(deriveKey(password, salt, env.KDF))
	if err != nil {
		return zero, errors.Wrap(err, "init aead")
	}
	if len(nonce) != aead.NonceSize() {
		return zero, ErrInvalidPasswordOrCorrupt
	}
	plain, err := aead.Open(nil, nonce, ct, o.AAD)
	if err != nil {
		return zero, ErrInvalidPasswordOrCorrupt
	}

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return zero, errors.Wrap(err, "unmarshal document")
	}
	return out, nil
}

func deriveKey(password, salt []byte, k KDF) []byte {
	return argon2.IDKey(password, salt, k.Time, k.Memory, k.Threads, k.KeyLen)
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON[T any](path string, v T, filePerm, dirPerm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrapf(err, "mkdir %s", filepath.Dir(path))
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal json")
	}
	return atomicWrite(path, b, filePerm)
}

// ReadJSON reads path into a T. A missing file keeps os.ErrNotExist in the chain.
func ReadJSON[T any](path string) (T, error) {
	var out T
	b, err := os.ReadFile(path)
	if err != nil {
		return out, errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, errors.Wrapf(err, "unmarshal %s", path)
	}
	return out, nil
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
