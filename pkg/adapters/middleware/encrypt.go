package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/ports"
)

// vaultFrame is the reserved frame name carrying the ciphertext in the
// opaque envelope state.
const vaultFrame = "__vault__"

// KeyConfig holds the keys for encrypting session state at rest.
type KeyConfig struct {
	// ActiveKey encrypts new writes. Must be 32 bytes (AES-256).
	ActiveKey []byte

	// FallbackKeys are tried in order when decryption with the active
	// key fails, enabling zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptStore struct {
	next ports.SessionStore
	cfg  KeyConfig
}

// NewEncrypt builds a middleware that stores each session as an
// AES-GCM encrypted envelope. Only the session ID and status stay
// readable; the scenario position, stack, and frame store are opaque
// to the backing store.
func NewEncrypt(cfg KeyConfig) (Middleware, error) {
	if len(cfg.ActiveKey) != 32 {
		return nil, fmt.Errorf("active key must be 32 bytes, got %d", len(cfg.ActiveKey))
	}
	for i, k := range cfg.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes, got %d", i, len(k))
		}
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptStore{next: next, cfg: cfg}
	}, nil
}

func (s *encryptStore) Save(ctx context.Context, state *domain.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	ciphertext, err := seal(plain, s.cfg.ActiveKey)
	if err != nil {
		return fmt.Errorf("encrypt session state: %w", err)
	}

	envelope := domain.NewState(state.ID, "")
	envelope.Status = state.Status
	vault := domain.NewInstance(vaultFrame)
	vault.Fields["data"] = base64.StdEncoding.EncodeToString(ciphertext)
	envelope.PutFrame(vault)

	return s.next.Save(ctx, envelope)
}

func (s *encryptStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := s.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.FrameValue(vaultFrame, "data")
	if !ok {
		// Fail closed: with encryption configured, a plain state in
		// the store is treated as corrupt rather than passed through.
		return nil, errors.New("session state is missing its encryption envelope")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode session envelope: %w", err)
	}

	plain, err := openWithRotation(ciphertext, s.cfg.ActiveKey, s.cfg.FallbackKeys)
	if err != nil {
		return nil, err
	}
	var state domain.State
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("unmarshal decrypted session state: %w", err)
	}
	return &state, nil
}

func (s *encryptStore) Delete(ctx context.Context, sessionID string) error {
	return s.next.Delete(ctx, sessionID)
}

func (s *encryptStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

func seal(plain, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func openWithRotation(ciphertext, activeKey []byte, fallbacks [][]byte) ([]byte, error) {
	if plain, err := open(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbacks {
		if plain, err := open(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("session state decryption failed with every configured key")
}

func open(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
