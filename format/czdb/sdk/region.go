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
	"strings"

	sdkerrors "github.com/geoczdb/czdb/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// regionDecoder reconstructs a human-readable region string by dereferencing
// a record's (data_ptr, data_len) into the decrypted column dictionary and
// appending a trailing free-form string.
type regionDecoder struct {
	columnDict []byte
	columnMask uint32
}

// decode reads a msgpack positive integer "geo-mix" value followed by a
// msgpack string ("other data") out of data, then assembles the result.
func (g *regionDecoder) decode(data []byte) (string, error) {
	decoder := msgpack.NewDecoder(bytes.NewReader(data))

	geoMix, err := decoder.DecodeInt64()
	if err != nil {
		// Absent geo-mix value: treat as 0, i.e. no column dictionary data.
		geoMix = 0
	}

	var sb strings.Builder
	if geoMix != 0 && len(g.columnDict) > 0 {
		if err := g.appendColumns(uint64(geoMix), &sb); err != nil {
			return "", err
		}
	}

	other, err := decoder.DecodeString()
	if err == nil {
		sb.WriteString(sanitizeUTF8(other))
	}

	return sb.String(), nil
}

// appendColumns dereferences column_dict[geo_offset : geo_offset+geo_len] as
// a msgpack array of strings and writes out the columns selected by mask,
// tab-separated.
func (g *regionDecoder) appendColumns(geoMix uint64, sb *strings.Builder) error {
	geoLen := int((geoMix >> 24) & 0xFF)
	geoOffset := int(geoMix & 0x00FFFFFF)

	if geoOffset < 0 || geoOffset+geoLen > len(g.columnDict) {
		return sdkerrors.ErrInvalidFormat
	}

	row := g.columnDict[geoOffset : geoOffset+geoLen]
	decoder := msgpack.NewDecoder(bytes.NewReader(row))

	n, err := decoder.DecodeArrayLen()
	if err != nil {
		return sdkerrors.ErrMsgpack
	}

	first := true
	for i := 0; i < n; i++ {
		value, err := decoder.DecodeString()
		if err != nil {
			return sdkerrors.ErrMsgpack
		}
		if (g.columnMask>>(i+1))&1 != 1 {
			continue
		}
		if !first {
			sb.WriteByte('\t')
		}
		sb.WriteString(sanitizeUTF8(value))
		first = false
	}
	return nil
}

// sanitizeUTF8 substitutes invalid UTF-8 sequences with U+FFFD.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}
