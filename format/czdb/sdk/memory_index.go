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
	"encoding/binary"
	"sort"

	sdkerrors "github.com/geoczdb/czdb/pkg/errors"
)

// memoryIndex is the "full load" representation: the raw record buffer plus
// a parallel array of big-endian start_ip keys extracted from it, so lookups
// binary-search fixed-width integers instead of re-slicing records.
type memoryIndex struct {
	records    []byte // raw [start_ip|end_ip|data_ptr|data_len] records, record_len each
	keysV4     []uint32
	keysV6     []uint128
	recordLen  int
	ipLength   int
}

// uint128 holds a big-endian IPv6 address as two 64-bit halves so it can be
// compared with ordinary integer comparisons.
type uint128 struct {
	hi, lo uint64
}

func (a uint128) less(b uint128) bool {
	if a.hi != b.hi {
		return a.hi < b.hi
	}
	return a.lo < b.lo
}

func (a uint128) equal(b uint128) bool {
	return a.hi == b.hi && a.lo == b.lo
}

func u128FromBytes(b []byte) uint128 {
	return uint128{hi: binary.BigEndian.Uint64(b[0:8]), lo: binary.BigEndian.Uint64(b[8:16])}
}

// buildMemoryIndex copies the index record range [offset+firstIndexPtr,
// offset+lastIndexPtr+recordLen) and extracts the start-IP key array by
// striding the buffer. The source is assumed already sorted by start_ip;
// this is validated rather than re-sorted.
func (r *Reader) buildMemoryIndex() error {
	start := r.offset + r.firstIndexPtr
	end := r.offset + r.lastIndexPtr + r.recordLength
	if start < 0 || end > len(r.data) || end < start {
		return sdkerrors.ErrInvalidFormat
	}

	records := make([]byte, end-start)
	copy(records, r.data[start:end])

	count := len(records) / r.recordLength
	idx := &memoryIndex{records: records, recordLen: r.recordLength, ipLength: r.ipLength}

	if r.dbType&IPv6 == 0 {
		idx.keysV4 = make([]uint32, count)
		for i := 0; i < count; i++ {
			rec := records[i*r.recordLength:]
			idx.keysV4[i] = binary.BigEndian.Uint32(rec[:4])
		}
		if !sort.SliceIsSorted(idx.keysV4, func(i, j int) bool { return idx.keysV4[i] < idx.keysV4[j] }) {
			return sdkerrors.ErrInvalidFormat
		}
	} else {
		idx.keysV6 = make([]uint128, count)
		for i := 0; i < count; i++ {
			rec := records[i*r.recordLength:]
			idx.keysV6[i] = u128FromBytes(rec[:16])
		}
		if !sort.SliceIsSorted(idx.keysV6, func(i, j int) bool { return idx.keysV6[i].less(idx.keysV6[j]) }) {
			return sdkerrors.ErrInvalidFormat
		}
	}

	r.memIdx = idx
	return nil
}

// searchMemoryV4 finds the last start_ip <= ip, then checks ip against that
// record's end_ip, for 4-byte keys.
func (idx *memoryIndex) searchMemoryV4(ip uint32) (recordOffset int, ok bool) {
	n := len(idx.keysV4)
	k := sort.Search(n, func(i int) bool { return idx.keysV4[i] >= ip })
	var i int
	if k < n && idx.keysV4[k] == ip {
		i = k
	} else {
		if k == 0 {
			return 0, false
		}
		i = k - 1
	}

	rec := idx.records[i*idx.recordLen:]
	endIP := binary.BigEndian.Uint32(rec[4:8])
	if ip > endIP {
		return 0, false
	}
	return i * idx.recordLen, true
}

// searchMemoryV6 is the same search as searchMemoryV4, for 16-byte keys.
func (idx *memoryIndex) searchMemoryV6(ip uint128) (recordOffset int, ok bool) {
	n := len(idx.keysV6)
	k := sort.Search(n, func(i int) bool { return !idx.keysV6[i].less(ip) })
	var i int
	if k < n && idx.keysV6[k].equal(ip) {
		i = k
	} else {
		if k == 0 {
			return 0, false
		}
		i = k - 1
	}

	rec := idx.records[i*idx.recordLen:]
	endIP := u128FromBytes(rec[16:32])
	if endIP.less(ip) {
		return 0, false
	}
	return i * idx.recordLen, true
}

// recordAt reads (data_ptr, data_len) out of the record at recordOffset.
func (idx *memoryIndex) recordAt(recordOffset int) (dataPtr int, dataLen int) {
	rec := idx.records[recordOffset+2*idx.ipLength:]
	dataPtr = int(binary.LittleEndian.Uint32(rec[0:4]))
	dataLen = int(rec[4])
	return
}
