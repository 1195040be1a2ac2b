/*
 * Copyright (c) 2023 shenjunzheng@gmail.com
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

package errors

import (
	"errors"
)

var (
	// Format

	ErrInvalidDatabase = errors.New("invalid database")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrKeyRequired     = errors.New("key is required for encrypted database")

	// Decryption / authentication

	ErrInvalidKeyLength = errors.New("decryption key must decode to 16 bytes")
	ErrClientIDMismatch = errors.New("decrypted client id does not match header client id")
	ErrDatabaseExpired  = errors.New("database has expired")

	// Query

	ErrInvalidIPType = errors.New("ip address family does not match database")
	ErrIPParse       = errors.New("failed to parse ip address")
	ErrMsgpack       = errors.New("malformed msgpack region data")
)
