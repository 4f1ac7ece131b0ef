/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

//go:build nokeyring

package config

import (
	"errors"
	"sync"
)

// In-memory keyring for environments without an OS keychain (CI, headless containers).

var (
	stubMu   sync.Mutex
	stubData = map[string]string{}
)

func init() {
	keyringGet = func(service, key string) (string, error) {
		stubMu.Lock()
		defer stubMu.Unlock()
		v, ok := stubData[service+"/"+key]
		if !ok {
			return "", errors.New("secret not found in stub keyring")
		}
		return v, nil
	}
	keyringSet = func(service, key, value string) error {
		stubMu.Lock()
		defer stubMu.Unlock()
		stubData[service+"/"+key] = value
		return nil
	}
	keyringDelete = func(service, key string) error {
		stubMu.Lock()
		defer stubMu.Unlock()
		delete(stubData, service+"/"+key)
		return nil
	}
}
