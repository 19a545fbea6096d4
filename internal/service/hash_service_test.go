package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; the format is identical.
var testArgon2Params = Argon2Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	password := "SecureP@ssw0rd!"
	hash, err := svc.Hash(password)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.Contains(t, hash, "m=65536,t=1,p=4")

	match, err := svc.Verify(password, hash)
	require.NoError(t, err)
	assert.True(t, match, "correct password should verify")

	match, err = svc.Verify("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, match, "wrong password should not verify")
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(testArgon2Params)

	hash1, err := svc.Hash("same-password")
	require.NoError(t, err)
	hash2, err := svc.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "same password should produce different hashes (different salts)")
}

func TestArgon2HashService_VerifyUsesEncodedCost(t *testing.T) {
	cheap := NewArgon2HashServiceWithParams(testArgon2Params)
	hash, err := cheap.Hash("pw")
	require.NoError(t, err)

	// A service configured with a different cost still verifies older hashes.
	match, err := NewArgon2HashService().Verify("pw", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_NeedsRehash(t *testing.T) {
	cheap := NewArgon2HashServiceWithParams(testArgon2Params)
	hash, err := cheap.Hash("pw")
	require.NoError(t, err)

	assert.False(t, cheap.NeedsRehash(hash))
	assert.True(t, NewArgon2HashService().NeedsRehash(hash))
	assert.True(t, cheap.NeedsRehash("garbage"))
}

func TestArgon2HashService_VerifyInvalidFormat(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(testArgon2Params)

	tests := []string{
		"not-a-valid-hash",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	}
	for _, encoded := range tests {
		_, err := svc.Verify("password", encoded)
		assert.Error(t, err, encoded)
	}
}

func TestArgon2HashService_EdgePasswords(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(testArgon2Params)

	for _, pw := range []string{"", strings.Repeat("a", 1000), "pässwörd"} {
		hash, err := svc.Hash(pw)
		require.NoError(t, err)

		match, err := svc.Verify(pw, hash)
		require.NoError(t, err)
		assert.True(t, match)
	}
}
