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
	"encoding/base64"
	"encoding/binary"

	sdkerrors "github.com/geoczdb/czdb/pkg/errors"
)

// parseHeaderPrefix reads the unencrypted 12-byte prefix:
// version (u32 LE), client_id (u32 LE), enc_meta_size (u32 LE).
func (r *Reader) parseHeaderPrefix() error {
	if len(r.data) < HyperHeaderLength {
		return sdkerrors.ErrInvalidDatabase
	}
	r.version = binary.LittleEndian.Uint32(r.data[0:4])
	r.clientID = binary.LittleEndian.Uint32(r.data[4:8])
	r.encryptedDataLength = int(binary.LittleEndian.Uint32(r.data[8:12]))

	if r.encryptedDataLength < 0 || len(r.data) < HyperHeaderLength+r.encryptedDataLength {
		return sdkerrors.ErrInvalidDatabase
	}
	return nil
}

// decryptHyperHeader decrypts the encrypted metadata block with AES-128-ECB,
// validates the embedded client id against the header prefix, and computes
// start_offset — the absolute position at which the super block begins.
func (r *Reader) decryptHyperHeader(keyBytes []byte) error {
	encrypted := r.data[HyperHeaderLength : HyperHeaderLength+r.encryptedDataLength]
	plain, err := AesECBDecrypt(encrypted, keyBytes)
	if err != nil {
		return err
	}
	if len(plain) < 8 {
		return sdkerrors.ErrInvalidFormat
	}

	first := binary.LittleEndian.Uint32(plain[0:4])
	r.decClientID = first >> 20
	r.decExpirationDate = first & 0xFFFFF
	r.decRandomBytesLength = int(binary.LittleEndian.Uint32(plain[4:8]))

	if r.decClientID != r.clientID {
		return sdkerrors.ErrClientIDMismatch
	}

	r.offset = HyperHeaderLength + r.encryptedDataLength + r.decRandomBytesLength
	if r.offset < 0 || r.offset+SuperPartLength > len(r.data) {
		return sdkerrors.ErrInvalidFormat
	}
	return nil
}

// parseSuperPart reads the 17-byte super block at r.offset and derives the
// record layout (IPv4 vs IPv6) from its family flag.
func (r *Reader) parseSuperPart() error {
	super := r.data[r.offset : r.offset+SuperPartLength]

	r.dbType = uint(super[0])
	r.fileSize = int(binary.LittleEndian.Uint32(super[1:5]))
	r.firstIndexPtr = int(binary.LittleEndian.Uint32(super[5:9]))
	r.totalHeaderBlockSize = int(binary.LittleEndian.Uint32(super[9:13]))
	r.lastIndexPtr = int(binary.LittleEndian.Uint32(super[13:17]))

	if r.dbType&IPv6 == 0 {
		r.ipLength = IPv4Length
		r.recordLength = IPv4IndexBlockLength
	} else {
		r.ipLength = IPv6Length
		r.recordLength = IPv6IndexBlockLength
	}

	if r.totalHeaderBlockSize%HeaderBlockLength != 0 {
		return sdkerrors.ErrInvalidFormat
	}
	if r.offset+r.firstIndexPtr > len(r.data) || r.offset+r.lastIndexPtr > len(r.data) {
		return sdkerrors.ErrInvalidFormat
	}
	if (r.lastIndexPtr-r.firstIndexPtr)%r.recordLength != 0 {
		return sdkerrors.ErrInvalidFormat
	}
	return nil
}

// loadColumnDict reads the column mask and, if present, decrypts the
// XOR-obfuscated column dictionary that sits immediately after the index
// records.
func (r *Reader) loadColumnDict(keyBytes []byte) error {
	ptr := r.offset + r.lastIndexPtr + 2*r.ipLength + 5
	if ptr+4 > len(r.data) {
		return sdkerrors.ErrInvalidFormat
	}

	r.columnMask = binary.LittleEndian.Uint32(r.data[ptr : ptr+4])
	if r.columnMask == 0 {
		return nil
	}

	sizePtr := ptr + 4
	if sizePtr+4 > len(r.data) {
		return sdkerrors.ErrInvalidFormat
	}
	dictSize := int(binary.LittleEndian.Uint32(r.data[sizePtr : sizePtr+4]))
	dictStart := sizePtr + 4
	if dictSize < 0 || dictStart+dictSize > len(r.data) {
		return sdkerrors.ErrInvalidFormat
	}

	dict := make([]byte, dictSize)
	copy(dict, r.data[dictStart:dictStart+dictSize])
	r.columnDict = XorDecrypt(dict, keyBytes)
	return nil
}

func decodeKey(key string) ([]byte, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, err
	}
	if len(keyBytes) != 16 {
		return nil, sdkerrors.ErrInvalidKeyLength
	}
	return keyBytes, nil
}
