/*
 * Copyright (c) 2025 shenjunzheng@gmail.com
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sdk

import (
	"crypto/aes"

	sdkerrors "github.com/geoczdb/czdb/pkg/errors"
)

// xorKeyWindow is the number of key bytes the XOR cipher cycles through,
// regardless of how long the decoded key actually is. This is a format
// constant, not a tunable.
const xorKeyWindow = 16

// AesECBDecrypt decrypts data (a multiple of the AES block size) with AES-128
// in ECB mode and strips PKCS#7 padding.
//
// Padding removal is deliberately lenient: if the trailing byte is not a
// valid pad length, or the padding bytes don't all match, the buffer is
// returned unstripped rather than rejected. Databases authored against the
// reference implementation depend on this leniency.
func AesECBDecrypt(data []byte, key []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, sdkerrors.ErrInvalidKeyLength
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, sdkerrors.ErrInvalidFormat
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	for off := 0; off < len(data); off += aes.BlockSize {
		block.Decrypt(out[off:off+aes.BlockSize], data[off:off+aes.BlockSize])
	}

	return pkcs7Unpad(out), nil
}

// pkcs7Unpad strips PKCS#7 padding, leaving the buffer untouched if the
// trailing byte doesn't describe valid padding.
func pkcs7Unpad(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > 16 || padLen > len(data) {
		return data
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return data
		}
	}
	return data[:len(data)-padLen]
}

// XorDecrypt XORs data in place against the first 16 bytes of key, cycling
// the key on a fixed 16-byte window even when the decoded key is longer. An
// empty key is a no-op.
func XorDecrypt(data []byte, key []byte) []byte {
	if len(key) == 0 {
		return data
	}
	window := key
	if len(window) > xorKeyWindow {
		window = window[:xorKeyWindow]
	}
	for i := range data {
		data[i] ^= window[i%len(window)]
	}
	return data
}
