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

// Package czdb is the public facade over format/czdb/sdk: construct a Reader
// from an in-memory database image plus a base64 decryption key, then query
// it for region strings. The sdk package is the decoder; this package is the
// surface callers are meant to import.
package czdb

import (
	"github.com/sirupsen/logrus"

	"github.com/geoczdb/czdb/format/czdb/sdk"
)

const (
	DBFormat = "czdb"
	DBExt    = ".czdb"
)

// Mode selects which index representation a Reader builds.
type Mode = sdk.Mode

const (
	// Memory resolves every query against a fully resident sorted key array.
	Memory = sdk.Memory
	// BTree keeps only an upper-level directory resident and streams the
	// matching lower-level block out of the backing buffer on each query.
	BTree = sdk.BTree
)

// Reader is an immutable, read-only CZDB database, safe for concurrent
// queries from multiple goroutines once constructed.
type Reader struct {
	db *sdk.Reader
}

// Open constructs a Reader in Memory mode from an in-memory database image
// and a base64-encoded 16-byte decryption key.
func Open(data []byte, key string) (*Reader, error) {
	return OpenWithMode(data, key, Memory)
}

// OpenWithMode constructs a Reader using the requested index mode.
func OpenWithMode(data []byte, key string, mode Mode) (*Reader, error) {
	db, err := sdk.OpenWithMode(data, key, mode)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

// OpenWithLogger is like OpenWithMode but overrides the logrus.FieldLogger used for
// one-shot construction diagnostics.
func OpenWithLogger(data []byte, key string, mode Mode, log logrus.FieldLogger) (*Reader, error) {
	db, err := sdk.OpenWithMode(data, key, mode, sdk.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

// Mode reports which index representation this Reader built.
func (r *Reader) Mode() Mode {
	return r.db.Mode()
}

// IsIPv4 reports whether this database holds IPv4 records.
func (r *Reader) IsIPv4() bool {
	return r.db.IsIPv4()
}

// IsIPv6 reports whether this database holds IPv6 records.
func (r *Reader) IsIPv6() bool {
	return r.db.IsIPv6()
}

// Search resolves ip_text to a TAB-separated region string, or the literal
// "Unknown" if no record covers the address.
func (r *Reader) Search(ipText string) (string, error) {
	return r.db.Search(ipText)
}

// SearchMany resolves a batch of IPs, substituting "Error" for any item that
// fails so the result stays positionally aligned with ips.
func (r *Reader) SearchMany(ips []string) []string {
	return r.db.SearchMany(ips)
}
