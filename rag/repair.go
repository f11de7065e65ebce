// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rag

import (
	"strings"
	"unicode"
)

// extractJSONObject returns the outermost {...} span of a model reply,
// preferring the body of a ```json fence when one is present.
func extractJSONObject(s string) (string, bool) {
	if _, body, ok := strings.Cut(s, "```json"); ok {
		if inner, _, ok := strings.Cut(body, "```"); ok {
			s = inner
		} else {
			s = body
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// repairJSON attempts to fix common JSON formatting issues from LLM responses:
// missing opening quotes before keys and trailing commas before a closing brace.
func repairJSON(s string) string {
	// Pattern: after { or , followed by optional whitespace, then a word followed by ":
	// Example: `, next_inputs":` -> `, "next_inputs":`
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]

		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		// Drop a trailing comma: `,` followed only by whitespace and `}`
		if ch == ',' {
			j := i + 1
			for j < len(result) && unicode.IsSpace(result[j]) {
				j++
			}
			if j < len(result) && result[j] == '}' {
				i++
				continue
			}
		}

		fixed = append(fixed, ch)
		i++

		for i < len(result) && unicode.IsSpace(result[i]) {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || result[i] == '"' || !unicode.IsLetter(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && (unicode.IsLetter(result[i]) || unicode.IsDigit(result[i]) || result[i] == '_') {
			i++
		}

		// A key followed by ": is missing its opening quote
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, result[keyStart:i]...)
	}

	return string(fixed)
}
