package core

import (
	"errors"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantErr  error
	}{
		{name: "plain question", question: "Какая ставка по вкладу?", wantErr: nil},
		{name: "empty", question: "", wantErr: ErrEmptyQuestion},
		{name: "whitespace only", question: " \n\t ", wantErr: ErrEmptyQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.question)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTurn(t *testing.T) {
	tests := []struct {
		name    string
		turn    Turn
		wantErr error
	}{
		{name: "human turn", turn: Turn{Role: RoleHuman, Content: "hi"}, wantErr: nil},
		{name: "ai turn", turn: Turn{Role: RoleAI, Content: "hello"}, wantErr: nil},
		{name: "empty content", turn: Turn{Role: RoleHuman}, wantErr: ErrEmptyContent},
		{name: "zero role", turn: Turn{Content: "hi"}, wantErr: ErrInvalidRole},
		{name: "out of range role", turn: Turn{Role: Role(42), Content: "hi"}, wantErr: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurn(tt.turn)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTurn() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTurn() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidTurn) {
				t.Errorf("ValidateTurn() error should wrap ErrInvalidTurn, got %v", err)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{name: "valid chunk", chunk: &Chunk{Text: "вклад\nтекст", Source: "вклад"}, wantErr: nil},
		{name: "valid chunk without vector", chunk: &Chunk{Text: "t", Source: "s", Vector: nil}, wantErr: nil},
		{name: "nil chunk", chunk: nil, wantErr: ErrInvalidChunk},
		{name: "empty text", chunk: &Chunk{Source: "s"}, wantErr: ErrEmptyContent},
		{name: "empty source", chunk: &Chunk{Text: "t"}, wantErr: ErrEmptySource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateChunk() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
