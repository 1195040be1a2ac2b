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

// Package sdk implements the CZDB embedded database decoder: header parsing,
// AES-ECB/XOR decryption, the two index representations (Memory and BTree)
// and the msgpack-backed region decoder. See doc.go for the on-disk layout.
package sdk

import (
	"net/netip"

	"github.com/sirupsen/logrus"

	sdkerrors "github.com/geoczdb/czdb/pkg/errors"
)

// Reader is a fully-initialized, read-only CZDB database. It is safe for
// concurrent use by multiple goroutines once Open/OpenWithMode returns: it
// owns an immutable byte image and performs no mutation on query paths.
type Reader struct {
	data []byte
	mode Mode
	log  logrus.FieldLogger

	// --- Hyper Header ---
	version             uint32
	clientID            uint32
	encryptedDataLength int

	// --- Decrypted Hyper Header ---
	decClientID          uint32
	decExpirationDate    uint32
	decRandomBytesLength int

	// --- Super Part ---
	dbType               uint
	fileSize             int
	firstIndexPtr        int
	totalHeaderBlockSize int
	lastIndexPtr         int

	// offset marks the start of the Super Part: HyperHeaderLength +
	// encryptedDataLength + decRandomBytesLength.
	offset int

	ipLength     int
	recordLength int

	columnMask uint32
	columnDict []byte

	memIdx   *memoryIndex
	btreeIdx *btreeIndex
}

// Option configures a Reader at construction time.
type Option func(*Reader)

// WithLogger overrides the logrus.FieldLogger used for one-shot construction
// diagnostics. Queries never log. Defaults to logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Reader) { r.log = log }
}

// Open constructs a Reader in Memory mode: header_decode → super_block_decode
// → column_dict_decode → index_build.
func Open(data []byte, key string, opts ...Option) (*Reader, error) {
	return OpenWithMode(data, key, Memory, opts...)
}

// OpenWithMode constructs a Reader using the requested index mode.
func OpenWithMode(data []byte, key string, mode Mode, opts ...Option) (*Reader, error) {
	r := &Reader{data: data, mode: mode, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}

	keyBytes, err := decodeKey(key)
	if err != nil {
		return nil, err
	}

	if err := r.parseHeaderPrefix(); err != nil {
		return nil, err
	}
	if err := r.decryptHyperHeader(keyBytes); err != nil {
		return nil, err
	}
	if err := r.parseSuperPart(); err != nil {
		return nil, err
	}
	if err := r.loadColumnDict(keyBytes); err != nil {
		return nil, err
	}

	switch mode {
	case BTree:
		if err := r.buildBTreeIndex(); err != nil {
			return nil, err
		}
	default:
		r.mode = Memory
		if err := r.buildMemoryIndex(); err != nil {
			return nil, err
		}
	}

	r.log.WithFields(logrus.Fields{
		"mode":       r.mode,
		"ipv6":       r.dbType&IPv6 != 0,
		"columnDict": len(r.columnDict) > 0,
		"version":    r.version,
		"expiration": r.decExpirationDate,
	}).Debug("czdb: database initialized")

	return r, nil
}

// Mode reports which index representation this Reader built.
func (r *Reader) Mode() Mode {
	return r.mode
}

// IsIPv4 reports whether this database holds IPv4 records.
func (r *Reader) IsIPv4() bool {
	return r.dbType&IPv6 == 0
}

// IsIPv6 reports whether this database holds IPv6 records.
func (r *Reader) IsIPv6() bool {
	return r.dbType&IPv6 != 0
}

// ExpirationDate returns the parsed (but unenforced) "YYMMDD" expiration
// value embedded in the encrypted metadata. Enforcement is left to the
// embedder.
func (r *Reader) ExpirationDate() uint32 {
	return r.decExpirationDate
}

// Search resolves ip_text to a region string, or the literal "Unknown" if no
// record covers the address. A family mismatch between ip_text and the
// database returns ErrInvalidIPType; unparsable text returns ErrIPParse.
func (r *Reader) Search(ipText string) (string, error) {
	addr, err := netip.ParseAddr(ipText)
	if err != nil {
		return "", sdkerrors.ErrIPParse
	}
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	if addr.Is4() != r.IsIPv4() {
		return "", sdkerrors.ErrInvalidIPType
	}

	var ip []byte
	if addr.Is4() {
		a := addr.As4()
		ip = a[:]
	} else {
		a := addr.As16()
		ip = a[:]
	}

	dataPtr, dataLen, ok := r.lookup(ip)
	if !ok {
		return Unknown, nil
	}

	region := &regionDecoder{columnDict: r.columnDict, columnMask: r.columnMask}
	start := r.offset + dataPtr
	end := start + dataLen
	if start < 0 || end > len(r.data) || end < start {
		return "", sdkerrors.ErrInvalidFormat
	}
	return region.decode(r.data[start:end])
}

// SearchMany resolves a batch of IPs, substituting the literal "Error" for
// any item that fails so results stay positionally aligned with ips.
func (r *Reader) SearchMany(ips []string) []string {
	out := make([]string, len(ips))
	for i, ip := range ips {
		res, err := r.Search(ip)
		if err != nil {
			out[i] = errorPlaceholder
			continue
		}
		out[i] = res
	}
	return out
}

// lookup dispatches to the index built for r.mode.
func (r *Reader) lookup(ip []byte) (dataPtr int, dataLen int, ok bool) {
	switch r.mode {
	case BTree:
		sptr, eptr, ok := r.btreeIdx.searchUpper(ip, r.recordLength)
		if !ok {
			return 0, 0, false
		}
		return r.searchLower(sptr, eptr, ip)
	default:
		if len(ip) == 4 {
			off, ok := r.memIdx.searchMemoryV4(bigEndianUint32(ip))
			if !ok {
				return 0, 0, false
			}
			dp, dl := r.memIdx.recordAt(off)
			return dp, dl, true
		}
		off, ok := r.memIdx.searchMemoryV6(u128FromBytes(ip))
		if !ok {
			return 0, 0, false
		}
		dp, dl := r.memIdx.recordAt(off)
		return dp, dl, true
	}
}

func bigEndianUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
