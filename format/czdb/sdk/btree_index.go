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
	"encoding/binary"

	sdkerrors "github.com/geoczdb/czdb/pkg/errors"
)

// btreeIndex is the upper-level directory for BTree mode: parallel arrays of
// pivot end_ip values (16 bytes each; IPv4 compares only the first 4) and a
// block_ptr array. Each entry is a fence pointer: pivot[i] is the end_ip of
// one record, and block_ptr[i] is the start offset of the *next* record, not
// of the one pivot[i] describes. The last record has no pivot of its own and
// is reached through searchUpper's degenerate-tail branch. The very first
// record has no block_ptr pointing at its start, so it is never found: an
// address below pivot[0] takes the l==0 branch, and an exact hit on pivot[0]
// yields an empty range. The lower level is never
// materialized — it is read directly out of the backing buffer at query
// time.
type btreeIndex struct {
	endIPs    [][]byte
	blockPtrs []int
}

// buildBTreeIndex walks the header block in 20-byte strides starting right
// after the super part, stopping at the first zero block_ptr sentinel.
func (r *Reader) buildBTreeIndex() error {
	base := r.offset + SuperPartLength
	if base+r.totalHeaderBlockSize > len(r.data) {
		return sdkerrors.ErrInvalidFormat
	}

	idx := &btreeIndex{}
	for i := 0; i < r.totalHeaderBlockSize; i += HeaderBlockLength {
		entry := r.data[base+i : base+i+HeaderBlockLength]
		blockPtr := int(binary.LittleEndian.Uint32(entry[16:20]))
		if blockPtr == 0 {
			break
		}
		idx.endIPs = append(idx.endIPs, entry[0:16])
		idx.blockPtrs = append(idx.blockPtrs, blockPtr)
	}

	r.btreeIdx = idx
	return nil
}

// searchUpper performs a three-way binary search with a degenerate-tail
// fallback over the upper directory, returning the [sptr, eptr) byte range
// (relative to start_offset) of the matching lower-level block. An sptr of 0
// with ok=false means no block can possibly contain ip. IPv4 databases
// compare only the first len(ip) (4) significant bytes of each 16-byte pivot
// field.
func (idx *btreeIndex) searchUpper(ip []byte, recordLen int) (sptr, eptr int, ok bool) {
	n := len(idx.endIPs)
	if n == 0 {
		return 0, 0, false
	}

	l, h := 0, n-1
	for l <= h {
		m := (l + h) >> 1
		cmp := bytes.Compare(ip, idx.endIPs[m][:len(ip)])
		if cmp < 0 {
			h = m - 1
		} else if cmp > 0 {
			l = m + 1
		} else {
			if m > 0 {
				sptr = idx.blockPtrs[m-1]
			} else {
				sptr = idx.blockPtrs[m]
			}
			eptr = idx.blockPtrs[m]
			return checkSptr(sptr, eptr)
		}
	}

	if l == 0 {
		return 0, 0, false
	}
	if l < n {
		sptr = idx.blockPtrs[l-1]
		eptr = idx.blockPtrs[l]
	} else if h >= 0 && h+1 < n {
		sptr = idx.blockPtrs[h]
		eptr = idx.blockPtrs[h+1]
	} else {
		sptr = idx.blockPtrs[n-1]
		eptr = sptr + recordLen
	}
	return checkSptr(sptr, eptr)
}

func checkSptr(sptr, eptr int) (int, int, bool) {
	if sptr == 0 {
		return 0, 0, false
	}
	return sptr, eptr, true
}

// searchLower performs a three-way binary search over the lower-level
// record stream [startOffset+sptr, startOffset+eptr), comparing the IP
// against each record's [start_ip, end_ip] range directly out of the
// backing buffer.
func (r *Reader) searchLower(sptr, eptr int, ip []byte) (dataPtr int, dataLen int, ok bool) {
	recordLen := r.recordLength
	ipLen := r.ipLength
	n := (eptr - sptr) / recordLen

	l, h := 0, n-1
	for l <= h {
		m := (l + h) >> 1
		p := r.offset + sptr + m*recordLen
		if p+recordLen > len(r.data) {
			return 0, 0, false
		}
		startIP := r.data[p : p+ipLen]
		endIP := r.data[p+ipLen : p+2*ipLen]

		if bytes.Compare(ip, startIP) < 0 {
			h = m - 1
			continue
		}
		if bytes.Compare(ip, endIP) > 0 {
			l = m + 1
			continue
		}

		dataPtr = int(binary.LittleEndian.Uint32(r.data[p+2*ipLen : p+2*ipLen+4]))
		dataLen = int(r.data[p+2*ipLen+4])
		return dataPtr, dataLen, true
	}
	return 0, 0, false
}
