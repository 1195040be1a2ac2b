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
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// fixtureRecord is one index record in a synthetic test database.
type fixtureRecord struct {
	start, end net.IP
	// geoRow indexes into the fixture's dict rows, or -1 for "no geo data"
	// (geo_mix == 0).
	geoRow int
	other  string
}

// fixtureConfig parameterizes buildFixture.
type fixtureConfig struct {
	ipv6       bool
	clientID   uint32
	expiration uint32
	key        []byte // 16 raw bytes
	records    []fixtureRecord
	dictRows   [][]string // nil/empty => no column dictionary
	columnMask uint32
}

// buildFixture assembles a complete, encrypted CZDB byte image matching
// doc.go's on-disk layout, for use as a test database. Records must already
// be sorted by start IP.
func buildFixture(t *testing.T, cfg fixtureConfig) []byte {
	t.Helper()

	ipLen := 4
	if cfg.ipv6 {
		ipLen = 16
	}
	recordLen := 2*ipLen + 5

	// --- Build the column dictionary blob and remember each row's
	// (offset, length) within it for geo_mix packing. ---
	var dictBuf bytes.Buffer
	rowOffsets := make([]int, len(cfg.dictRows))
	rowLens := make([]int, len(cfg.dictRows))
	for i, row := range cfg.dictRows {
		before := dictBuf.Len()
		enc := msgpack.NewEncoder(&dictBuf)
		require.NoError(t, enc.EncodeArrayLen(len(row)))
		for _, s := range row {
			require.NoError(t, enc.EncodeString(s))
		}
		rowOffsets[i] = before
		rowLens[i] = dictBuf.Len() - before
	}
	dictPlain := dictBuf.Bytes()

	// --- Build the region-data blob (one msgpack geo_mix int + msgpack
	// "other" string per record) and remember each record's (ptr, len). ---
	var dataBuf bytes.Buffer
	dataPtrs := make([]int, len(cfg.records))
	dataLens := make([]int, len(cfg.records))
	for i, rec := range cfg.records {
		before := dataBuf.Len()
		enc := msgpack.NewEncoder(&dataBuf)
		var geoMix int64
		if rec.geoRow >= 0 {
			geoMix = int64(rowLens[rec.geoRow])<<24 | int64(rowOffsets[rec.geoRow])
		}
		require.NoError(t, enc.EncodeInt(geoMix))
		require.NoError(t, enc.EncodeString(rec.other))
		dataPtrs[i] = before
		dataLens[i] = dataBuf.Len() - before
		require.LessOrEqual(t, dataLens[i], 255)
	}

	// --- Layout (all offsets relative to start_offset), matching doc.go's
	// stated block order Header Block -> Data Block -> Index Block -> Geo Map
	// Block. The column dict pointer has no field of its own: it is derived
	// as last_index_ptr + record_len, so nothing may sit between the index
	// records and the column mask. ---
	//   [17)                     super part (written by caller)
	//   [17, 17+hdrSize)         header block (BTree upper directory)
	//   [dataStart, dataEnd)     region data blob
	//   [indexStart, indexEnd)   index records
	//   [indexEnd, ...)          column_mask(4) + dict_size(4) + dict bytes
	//
	// Each header entry closes out one record and fence-points at the next:
	// entry[i] = (end_ip(record i), start_offset(record i+1)). There is no
	// entry for the final record (searchUpper's degenerate-tail branch finds
	// it as a single-record probe), and none for record 0 either (a query
	// landing in record 0 below its end_ip satisfies searchUpper's "l == 0"
	// branch, which is defined to return "no match" regardless of the true
	// data, and a query equal to its end_ip gets an empty block range).
	// This is the real upper-index limitation behind why reference databases
	// are missing 0.0.0.0/32 and ::/128 coverage; buildBTreeIndex must be fed
	// a pivot table with this same shape for searchUpper's branches to
	// resolve to the right record.
	numHeaderEntries := 0
	if len(cfg.records) > 1 {
		numHeaderEntries = len(cfg.records) - 1
	}
	hdrSize := numHeaderEntries * HeaderBlockLength

	dataStart := SuperPartLength + hdrSize
	indexStart := dataStart + dataBuf.Len()
	indexEnd := indexStart + len(cfg.records)*recordLen // one-past-last byte
	lastRecordStart := indexStart + (len(cfg.records)-1)*recordLen
	if len(cfg.records) == 0 {
		lastRecordStart = indexStart
	}

	var body bytes.Buffer // everything starting at start_offset

	// Super part, patched in after we know pointers; reserve space now.
	body.Write(make([]byte, SuperPartLength))

	// Header block.
	for i := 0; i < numHeaderEntries; i++ {
		endIPBytes := make([]byte, 16)
		endRaw := ipBytes(cfg.records[i].end, cfg.ipv6)
		copy(endIPBytes[:len(endRaw)], endRaw)
		body.Write(endIPBytes)
		ptr := indexStart + (i+1)*recordLen
		var ptrBuf [4]byte
		binary.LittleEndian.PutUint32(ptrBuf[:], uint32(ptr))
		body.Write(ptrBuf[:])
	}
	require.Equal(t, SuperPartLength+hdrSize, body.Len())

	// Region data blob.
	body.Write(dataBuf.Bytes())
	require.Equal(t, indexStart, body.Len())

	// Index records.
	for i, rec := range cfg.records {
		body.Write(ipBytes(rec.start, cfg.ipv6))
		body.Write(ipBytes(rec.end, cfg.ipv6))
		var ptrBuf [4]byte
		binary.LittleEndian.PutUint32(ptrBuf[:], uint32(dataPtrs[i]+dataStart))
		body.Write(ptrBuf[:])
		body.WriteByte(byte(dataLens[i]))
	}
	require.Equal(t, indexEnd, body.Len())

	// Column mask + dict.
	var maskBuf [4]byte
	binary.LittleEndian.PutUint32(maskBuf[:], cfg.columnMask)
	body.Write(maskBuf[:])

	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(dictPlain)))
	body.Write(sizeBuf[:])

	dictEncrypted := append([]byte(nil), dictPlain...)
	XorDecrypt(dictEncrypted, cfg.key) // involutive: encrypt == decrypt

	if cfg.columnMask != 0 {
		body.Write(dictEncrypted)
	}

	// Patch the super part now that every pointer is known.
	buf := body.Bytes()
	dbType := byte(0)
	if cfg.ipv6 {
		dbType = 1
	}
	buf[0] = dbType
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(indexStart))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(hdrSize))
	binary.LittleEndian.PutUint32(buf[13:17], uint32(lastRecordStart))

	return wrapHyperHeader(t, cfg.clientID, cfg.expiration, cfg.key, buf)
}

// wrapHyperHeader encrypts the 8-byte meta block (client_id/expiration +
// random pad length) and prefixes it, plus a random pad, onto body.
func wrapHyperHeader(t *testing.T, clientID, expiration uint32, key []byte, body []byte) []byte {
	t.Helper()

	meta := make([]byte, 8)
	binary.LittleEndian.PutUint32(meta[0:4], clientID<<20|(expiration&0xFFFFF))
	const padSize = 4
	binary.LittleEndian.PutUint32(meta[4:8], uint32(padSize))

	encMeta := aesECBEncryptPKCS7(t, meta, key)

	var out bytes.Buffer
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], 20250101)
	binary.LittleEndian.PutUint32(hdr[4:8], clientID)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(encMeta)))
	out.Write(hdr[:])
	out.Write(encMeta)
	out.Write(make([]byte, padSize))
	out.Write(body)
	return out.Bytes()
}

// aesECBEncryptPKCS7 is the inverse of AesECBDecrypt, used only to build
// test fixtures (there is no authoring tool in scope for the engine itself).
func aesECBEncryptPKCS7(t *testing.T, data []byte, key []byte) []byte {
	t.Helper()
	pad := aes.BlockSize - len(data)%aes.BlockSize
	padded := append(append([]byte(nil), data...), bytes.Repeat([]byte{byte(pad)}, pad)...)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	out := make([]byte, len(padded))
	for off := 0; off < len(padded); off += aes.BlockSize {
		block.Encrypt(out[off:off+aes.BlockSize], padded[off:off+aes.BlockSize])
	}
	return out
}

func ipBytes(ip net.IP, ipv6 bool) []byte {
	if ipv6 {
		return ip.To16()
	}
	return ip.To4()
}

func b64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

func testKey() []byte {
	return []byte("0123456789abcdef")
}
