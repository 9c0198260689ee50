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
	"crypto/md5"
	"crypto/rc4"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/types"
)

var (
	// ErrAuthRequired gets raised when both owner and user password reject.
	ErrAuthRequired = errors.New("aurochs: crypto: authentication failed")

	// ErrUnsupportedCryptFilter gets raised for crypt filters other than V2/AESV2/Identity.
	ErrUnsupportedCryptFilter = errors.New("aurochs: crypto: unsupported crypt filter")

	// ErrTruncatedCiphertext gets raised for AES payloads shorter than two blocks
	// or not a multiple of the block size.
	ErrTruncatedCiphertext = errors.New("aurochs: crypto: truncated ciphertext")

	// ErrBadPadding gets raised for invalid PKCS#7 padding.
	ErrBadPadding = errors.New("aurochs: crypto: bad padding")

	errUnsupportedEncryption = errors.New("aurochs: crypto: unsupported encryption")
)

// The standard padding, see Algorithm 3.2.
var pad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// checkEncryption applies the configured encryption policy.
func checkEncryption(ctx *Context) error {
	if ctx.XRefTable.Encrypt == nil {
		return nil
	}

	switch ctx.EncryptionPolicy {

	case EncryptReject:
		return ErrEncrypted

	case EncryptIgnore:
		// Best effort read without decryption, used for already decrypted fixtures.
		if log.InfoEnabled() {
			log.Info.Println("encrypted document read without decryption per policy")
		}
		return nil

	case EncryptDecrypt:
		return setupDecryption(ctx)
	}

	return nil
}

func setupDecryption(ctx *Context) error {
	d, err := ctx.DereferenceDict(*ctx.XRefTable.Encrypt)
	if err != nil {
		return err
	}
	if d == nil {
		return errUnsupportedEncryption
	}

	enc, err := supportedEncryption(ctx, d)
	if err != nil {
		return err
	}
	ctx.E = enc

	if ctx.XRefTable.ID == nil || len(ctx.XRefTable.ID) == 0 {
		return errors.New("aurochs: crypto: missing ID entry")
	}
	id, err := types.StringOrHexLiteralBytes(ctx.XRefTable.ID[0])
	if err != nil {
		return err
	}
	enc.ID = id

	ok, err := validateUserPassword(ctx)
	if err != nil {
		return err
	}
	if !ok {
		ok, err = validateOwnerPassword(ctx)
		if err != nil {
			return err
		}
	}
	if !ok {
		return ErrAuthRequired
	}

	return nil
}

func supportedCFEntry(d types.Dict) (aes bool, err error) {
	cfm := d.NameEntry("CFM")
	if cfm == nil {
		return false, ErrUnsupportedCryptFilter
	}

	switch *cfm {
	case "V2":
		return false, nil
	case "AESV2":
		return true, nil
	}

	return false, ErrUnsupportedCryptFilter
}

func supportedEncryption(ctx *Context, d types.Dict) (*Enc, error) {
	if f := d.NameEntry("Filter"); f == nil || *f != "Standard" {
		return nil, errUnsupportedEncryption
	}

	v := d.IntEntry("V")
	if v == nil || (*v != 1 && *v != 2 && *v != 4) {
		return nil, errUnsupportedEncryption
	}

	l := 40
	if i := d.IntEntry("Length"); i != nil {
		l = *i
		if l < 40 || l > 128 || l%8 > 0 {
			return nil, errUnsupportedEncryption
		}
	}

	r := d.IntEntry("R")
	if r == nil || *r < 2 || *r > 4 {
		return nil, errUnsupportedEncryption
	}

	enc := &Enc{V: *v, L: l, R: *r, Emd: true}

	if *v == 4 {
		// V=4 carries crypt filters selecting RC4 or AES-128.
		cfd := d.DictEntry("CF")
		if cfd == nil {
			return nil, ErrUnsupportedCryptFilter
		}

		stdCF := cfd.DictEntry("StdCF")
		if stdCF == nil {
			return nil, ErrUnsupportedCryptFilter
		}

		aes, err := supportedCFEntry(stdCF)
		if err != nil {
			return nil, err
		}

		useAES := func(key string) bool {
			n := d.NameEntry(key)
			return n != nil && *n == "StdCF" && aes
		}
		ctx.AES4Strings = useAES("StrF")
		ctx.AES4Streams = useAES("StmF")
	}

	o, err := entryBytes(d, "O")
	if err != nil {
		return nil, err
	}
	if len(o) < 32 {
		return nil, errUnsupportedEncryption
	}
	enc.O = o[:32]

	u, err := entryBytes(d, "U")
	if err != nil {
		return nil, err
	}
	if len(u) < 32 {
		return nil, errUnsupportedEncryption
	}
	enc.U = u[:32]

	p := d.IntEntry("P")
	if p == nil {
		return nil, errUnsupportedEncryption
	}
	enc.P = *p

	if emd := d.BooleanEntry("EncryptMetadata"); emd != nil {
		enc.Emd = *emd
	}

	return enc, nil
}

func entryBytes(d types.Dict, key string) ([]byte, error) {
	o, found := d.Find(key)
	if !found {
		return nil, errors.Errorf("aurochs: crypto: missing entry %s", key)
	}
	return types.StringOrHexLiteralBytes(o)
}

// fileEncKey implements Algorithm 3.2: computing an encryption key.
func fileEncKey(password string, e *Enc) []byte {
	// 3a: pad or truncate the password to exactly 32 bytes.
	pw := []byte(password)
	if len(pw) >= 32 {
		pw = pw[:32]
	} else {
		pw = append(pw, pad[:32-len(pw)]...)
	}

	// 3b: pass to MD5 together with O, P and the first file ID element.
	h := md5.New()
	h.Write(pw)
	h.Write(e.O[:32])

	p := uint32(e.P)
	h.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})

	h.Write(e.ID)

	// R4 without metadata encryption appends 0xFFFFFFFF.
	if e.R >= 4 && !e.Emd {
		h.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	}

	key := h.Sum(nil)

	// 3c+d: 50 MD5 rounds for R >= 3.
	if e.R >= 3 {
		for i := 0; i < 50; i++ {
			key = md5sum(key[:e.L/8])
		}
		key = key[:e.L/8]
	} else {
		key = key[:5]
	}

	return key
}

func md5sum(b []byte) []byte {
	s := md5.Sum(b)
	return s[:]
}

// u computes the user password digest per Algorithm 3.4/3.5.
func u(ctx *Context, key []byte) ([]byte, error) {
	e := ctx.E

	if e.R == 2 {
		// Algorithm 3.4
		c, err := rc4.NewCipher(key)
		if err != nil {
			return nil, err
		}
		u := make([]byte, 32)
		c.XORKeyStream(u, pad)
		return u, nil
	}

	// Algorithm 3.5
	h := md5.New()
	h.Write(pad)
	h.Write(e.ID)
	digest := h.Sum(nil)

	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, err
	}
	c.XORKeyStream(digest, digest)

	// Iterations with mutated keys.
	for i := 1; i <= 19; i++ {
		keyX := make([]byte, len(key))
		for j := range key {
			keyX[j] = key[j] ^ byte(i)
		}
		c, err := rc4.NewCipher(keyX)
		if err != nil {
			return nil, err
		}
		c.XORKeyStream(digest, digest)
	}

	return digest, nil
}

func validateUserPassword(ctx *Context) (bool, error) {
	key := fileEncKey(ctx.UserPW, ctx.E)

	uu, err := u(ctx, key)
	if err != nil {
		return false, err
	}

	var ok bool
	if ctx.E.R == 2 {
		ok = bytes.Equal(ctx.E.U, uu)
	} else {
		// For R >= 3 only the first 16 bytes are significant.
		ok = len(ctx.E.U) >= 16 && bytes.Equal(ctx.E.U[:16], uu[:16])
	}

	if ok {
		ctx.EncKey = key
	}

	return ok, nil
}

// ownerKey computes the RC4 key of Algorithm 3.3 steps a-d.
func ownerKey(ownerpw, userpw string, e *Enc) []byte {
	pw := []byte(ownerpw)
	if len(pw) == 0 {
		pw = []byte(userpw)
	}
	if len(pw) >= 32 {
		pw = pw[:32]
	} else {
		pw = append(pw, pad[:32-len(pw)]...)
	}

	key := md5sum(pw)

	if e.R >= 3 {
		for i := 0; i < 50; i++ {
			key = md5sum(key)
		}
	}

	if e.R >= 3 {
		return key[:e.L/8]
	}
	return key[:5]
}

func validateOwnerPassword(ctx *Context) (bool, error) {
	e := ctx.E

	key := ownerKey(ctx.OwnerPW, ctx.UserPW, e)

	// Decrypt O to recover the user password.
	upw := make([]byte, len(e.O))
	copy(upw, e.O)

	if e.R == 2 {
		c, err := rc4.NewCipher(key)
		if err != nil {
			return false, err
		}
		c.XORKeyStream(upw, upw)
	} else {
		for i := 19; i >= 0; i-- {
			keyX := make([]byte, len(key))
			for j := range key {
				keyX[j] = key[j] ^ byte(i)
			}
			c, err := rc4.NewCipher(keyX)
			if err != nil {
				return false, err
			}
			c.XORKeyStream(upw, upw)
		}
	}

	saved := ctx.UserPW
	ctx.UserPW = string(upw)
	ok, err := validateUserPassword(ctx)
	ctx.UserPW = saved

	return ok, err
}

// decryptKey derives the per object key, Algorithm 3.1.
func decryptKey(objNr, genNr int, key []byte, needAES bool) []byte {
	m := md5.New()

	nr := uint32(objNr)
	m.Write(key)
	m.Write([]byte{byte(nr), byte(nr >> 8), byte(nr >> 16)})

	gen := uint16(genNr)
	m.Write([]byte{byte(gen), byte(gen >> 8)})

	if needAES {
		m.Write([]byte("sAlT"))
	}

	dk := m.Sum(nil)

	l := len(key) + 5
	if l < 16 {
		dk = dk[:l]
	}

	return dk
}

func applyRC4Bytes(b, key []byte) []byte {
	c, _ := rc4.NewCipher(key)
	out := make([]byte, len(b))
	c.XORKeyStream(out, b)
	return out
}

func decryptAESBytes(b, key []byte) ([]byte, error) {
	// The payload carries a 16 byte IV followed by at least one cipher block.
	if len(b) < 2*aes.BlockSize {
		return nil, ErrTruncatedCiphertext
	}
	if len(b)%aes.BlockSize > 0 {
		return nil, ErrTruncatedCiphertext
	}

	cb, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := b[:aes.BlockSize]
	data := make([]byte, len(b)-aes.BlockSize)
	copy(data, b[aes.BlockSize:])

	mode := cipher.NewCBCDecrypter(cb, iv)
	mode.CryptBlocks(data, data)

	// Remove PKCS#7 padding.
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, ErrBadPadding
	}
	for _, c := range data[len(data)-n:] {
		if int(c) != n {
			return nil, ErrBadPadding
		}
	}

	return data[:len(data)-n], nil
}

// DecryptBytes decrypts b using the per object key for (objNr, genNr).
func (ctx *Context) DecryptBytes(objNr, genNr int, b []byte, needAES bool) ([]byte, error) {
	k := decryptKey(objNr, genNr, ctx.EncKey, needAES)
	if needAES {
		return decryptAESBytes(b, k)
	}
	return applyRC4Bytes(b, k), nil
}

// decryptObject walks o recursively decrypting every string and stream payload.
func (ctx *Context) decryptObject(o types.Object, objNr, genNr int) (types.Object, error) {
	switch obj := o.(type) {

	case types.StringLiteral:
		bb, err := types.StringLiteralToBytes(obj)
		if err != nil {
			return nil, err
		}
		bb, err = ctx.DecryptBytes(objNr, genNr, bb, ctx.AES4Strings)
		if err != nil {
			return nil, err
		}
		return types.StringLiteral(bb), nil

	case types.HexLiteral:
		bb, err := obj.Bytes()
		if err != nil {
			return nil, err
		}
		bb, err = ctx.DecryptBytes(objNr, genNr, bb, ctx.AES4Strings)
		if err != nil {
			return nil, err
		}
		return types.NewHexLiteral(bb), nil

	case types.Dict:
		for k, v := range obj {
			v1, err := ctx.decryptObject(v, objNr, genNr)
			if err != nil {
				return nil, err
			}
			obj[k] = v1
		}
		return obj, nil

	case types.Array:
		for i, v := range obj {
			v1, err := ctx.decryptObject(v, objNr, genNr)
			if err != nil {
				return nil, err
			}
			obj[i] = v1
		}
		return obj, nil

	case types.StreamDict:
		// Metadata streams stay in the clear when Emd is false.
		if !ctx.E.Emd {
			if t := obj.Type(); t != nil && *t == "Metadata" {
				return obj, nil
			}
		}
		if err := loadEncodedStreamContent(ctx, &obj); err != nil {
			return nil, err
		}
		raw, err := ctx.DecryptBytes(objNr, genNr, obj.Raw, ctx.AES4Streams)
		if err != nil {
			return nil, err
		}
		obj.Raw = raw
		l := int64(len(raw))
		obj.StreamLength = &l
		// Dict entries (strings) are decrypted too.
		if _, err := ctx.decryptObject(obj.Dict, objNr, genNr); err != nil {
			return nil, err
		}
		return obj, nil
	}

	return o, nil
}
