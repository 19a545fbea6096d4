package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte key in hex (64 chars)
const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestEncryption(t *testing.T) *AESEncryptionService {
	t.Helper()
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	return svc
}

func TestAESEncryptionService_NewInvalidKey(t *testing.T) {
	_, err := NewAESEncryptionService("shortkey")
	assert.Error(t, err)

	_, err = NewAESEncryptionService("abcd")
	assert.Error(t, err)
}

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	svc := newTestEncryption(t).ForPurpose(PurposeBiometricTemplate)

	ciphertext, err := svc.Encrypt("T1")
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "T1")

	decrypted, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "T1", decrypted)
}

func TestAESEncryptionService_RandomNonce(t *testing.T) {
	svc := newTestEncryption(t)

	c1, err := svc.Encrypt("template")
	require.NoError(t, err)
	c2, err := svc.Encrypt("template")
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "same plaintext should produce different ciphertext due to random nonce")
}

func TestAESEncryptionService_PurposeBinding(t *testing.T) {
	base := newTestEncryption(t)
	templates := base.ForPurpose(PurposeBiometricTemplate)
	nationalIDs := base.ForPurpose(PurposeNationalID)

	ciphertext, err := templates.Encrypt("fingerprint-bytes")
	require.NoError(t, err)

	_, err = nationalIDs.Decrypt(ciphertext)
	assert.Error(t, err, "a template must not open as a national ID")

	_, err = base.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc := newTestEncryption(t)

	ciphertext, err := svc.Encrypt("secret")
	require.NoError(t, err)

	last := ciphertext[len(ciphertext)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := ciphertext[:len(ciphertext)-1] + string(flipped)

	_, err = svc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestAESEncryptionService_WrongKey(t *testing.T) {
	svc := newTestEncryption(t)
	other, err := NewAESEncryptionService("fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210")
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("secret")
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestAESEncryptionService_InvalidCiphertext(t *testing.T) {
	svc := newTestEncryption(t)

	_, err := svc.Decrypt("not-hex")
	assert.Error(t, err)

	_, err = svc.Decrypt("abcd")
	assert.Error(t, err)
}
