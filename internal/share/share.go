/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package share encodes a drawn layout into a URL-safe token and back.
// Decoding is atomic: a corrupt or non-conforming token yields an error and
// never a partially loaded scene.
package share

import (
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"fencestudio/internal/domain"
)

//go:embed share.schema.json
var schemaBytes []byte

// Version is the current token payload version.
const Version = 1

// Payload is the shared scene: the segment list plus the active tool style
// and color, so the recipient continues drawing with the sender's settings.
type Payload struct {
	Version  int              `json:"v"`
	Segments []domain.Segment `json:"segments"`
	StyleID  string           `json:"styleId"`
	ColorID  string           `json:"colorId"`
}

// Encode serializes a layout into a URL-safe base64 token.
func Encode(segments []domain.Segment, styleID, colorID string) (string, error) {
	p := Payload{
		Version:  Version,
		Segments: domain.CloneSegments(segments),
		StyleID:  styleID,
		ColorID:  colorID,
	}
	if p.Segments == nil {
		p.Segments = []domain.Segment{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode share payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode validates and deserializes a share token. The payload is checked
// against the embedded JSON schema before unmarshalling.
func Decode(token string) (Payload, error) {
	var p Payload
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return p, fmt.Errorf("decode share token: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(b))
	if err != nil {
		return p, fmt.Errorf("validate share token: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return p, fmt.Errorf("invalid share token: %s", errs[0])
		}
		return p, fmt.Errorf("invalid share token")
	}

	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("decode share payload: %w", err)
	}
	if p.Version != Version {
		return Payload{}, fmt.Errorf("unsupported share token version %d", p.Version)
	}
	return p, nil
}
