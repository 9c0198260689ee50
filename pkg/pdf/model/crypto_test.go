/*
Copyright 2023 The aurochs Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rc4"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkbt10/aurochs/pkg/types"
)

func TestFileEncKeyLengths(t *testing.T) {
	e := &Enc{
		O:   bytes.Repeat([]byte{0xAA}, 32),
		P:   -44,
		R:   2,
		L:   40,
		Emd: true,
		ID:  []byte{1, 2, 3, 4},
	}

	// R2 keys truncate to 5 bytes.
	key := fileEncKey("user", e)
	assert.Len(t, key, 5)

	// R3 keys truncate to the declared length.
	e.R = 3
	e.L = 128
	key = fileEncKey("user", e)
	assert.Len(t, key, 16)

	// Derivation is deterministic.
	assert.Equal(t, key, fileEncKey("user", e))
	assert.NotEqual(t, key, fileEncKey("other", e))
}

func TestDecryptKeyDerivation(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 5)

	k1 := decryptKey(1, 0, key, false)
	k2 := decryptKey(2, 0, key, false)
	assert.NotEqual(t, k1, k2)

	// len(key)+5 capped at 16.
	assert.Len(t, k1, 10)
	assert.Len(t, decryptKey(1, 0, bytes.Repeat([]byte{0x11}, 16), true), 16)

	// The AES variant salts the digest.
	assert.NotEqual(t, decryptKey(1, 0, key, false), decryptKey(1, 0, key, true))
}

func TestRC4SymmetricDecrypt(t *testing.T) {
	ctx := NewContext(nil, nil)
	ctx.EncKey = bytes.Repeat([]byte{0x42}, 5)

	plain := []byte("payload bytes")

	// Encrypt with the same per object key the decryptor derives.
	k := decryptKey(7, 0, ctx.EncKey, false)
	c, err := rc4.NewCipher(k)
	require.NoError(t, err)
	enc := make([]byte, len(plain))
	c.XORKeyStream(enc, plain)

	out, err := ctx.DecryptBytes(7, 0, enc, false)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func aesEncryptForTest(t *testing.T, key, plain []byte) []byte {
	t.Helper()

	// PKCS#7 padding.
	pad := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(append([]byte(nil), plain...), bytes.Repeat([]byte{byte(pad)}, pad)...)

	cb, err := aes.NewCipher(key)
	require.NoError(t, err)

	iv := bytes.Repeat([]byte{0x24}, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(cb, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return out
}

func TestAESDecryptRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x0F}, 16)
	plain := []byte("the quick brown fox")

	out, err := decryptAESBytes(aesEncryptForTest(t, key, plain), key)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestAESTruncatedCiphertext(t *testing.T) {
	key := bytes.Repeat([]byte{0x0F}, 16)

	// Payloads below two blocks are truncated.
	_, err := decryptAESBytes(bytes.Repeat([]byte{1}, 16), key)
	assert.ErrorIs(t, err, ErrTruncatedCiphertext)

	// Non block multiples are truncated as well.
	_, err = decryptAESBytes(bytes.Repeat([]byte{1}, 33), key)
	assert.ErrorIs(t, err, ErrTruncatedCiphertext)
}

func TestAESBadPadding(t *testing.T) {
	key := bytes.Repeat([]byte{0x0F}, 16)
	enc := aesEncryptForTest(t, key, []byte("x"))

	// Corrupt the last ciphertext byte so the padding check fails.
	enc[len(enc)-1] ^= 0xFF

	_, err := decryptAESBytes(enc, key)
	assert.ErrorIs(t, err, ErrBadPadding)
}

func TestUserPasswordValidationRoundTrip(t *testing.T) {
	// Construct a document's U entry from a known key and verify that
	// validateUserPassword accepts the matching password.
	e := &Enc{
		O:   bytes.Repeat([]byte{0xAB}, 32),
		P:   -44,
		R:   2,
		L:   40,
		Emd: true,
		ID:  []byte{9, 8, 7, 6},
	}

	key := fileEncKey("secret", e)

	ctx := NewContext(nil, nil)
	ctx.E = e
	ctx.UserPW = "secret"

	uu, err := u(ctx, key)
	require.NoError(t, err)
	e.U = uu

	ok, err := validateUserPassword(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, key, ctx.EncKey)

	// A wrong password rejects.
	ctx2 := NewContext(nil, nil)
	ctx2.E = e
	ctx2.UserPW = "wrong"
	ok, err = validateUserPassword(ctx2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecryptObjectWalksStrings(t *testing.T) {
	ctx := NewContext(nil, nil)
	ctx.EncKey = bytes.Repeat([]byte{0x42}, 5)

	plain := "nested"
	k := decryptKey(3, 0, ctx.EncKey, false)
	c, err := rc4.NewCipher(k)
	require.NoError(t, err)
	enc := make([]byte, len(plain))
	c.XORKeyStream(enc, []byte(plain))

	// String payloads are decrypted recursively through dicts and arrays.
	d := types.NewDict()
	d.Insert("Inner", types.Array{types.NewHexLiteral(enc)})

	o, err := ctx.decryptObject(d, 3, 0)
	require.NoError(t, err)

	arr := o.(types.Dict).ArrayEntry("Inner")
	require.Len(t, arr, 1)
	assert.Equal(t, types.NewHexLiteral([]byte(plain)), arr[0])
}
