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


package core

import (
	"fmt"
	"strings"
)

// ValidateQuestion checks that a question has non-whitespace content.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// ValidateTurn validates a Turn according to domain rules.
//
// Validation rules:
//   - Role must be valid (Human or AI)
//   - Content must not be empty
func ValidateTurn(turn Turn) error {
	if err := ValidateRole(turn.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}
	if turn.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyContent)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Source must not be empty
//
// NOT validated:
//   - Vector (can be empty until embedded)
//   - ID (derived from Text on insert)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if chunk.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}
	return nil
}

// ValidateRole checks if a Role is valid.
func ValidateRole(r Role) error {
	if r != RoleHuman && r != RoleAI {
		return fmt.Errorf("%w: %d", ErrInvalidRole, r)
	}
	return nil
}
