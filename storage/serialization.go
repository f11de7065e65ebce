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


package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/depositbot/core"
)

// Kind tags of the primitive tree encoding.
const (
	kindNil byte = iota
	kindString
	kindBool
	kindInt
	kindFloat
	kindList
	kindMap
)

// maxPrimitiveDepth bounds nesting when decoding stored session trees.
const maxPrimitiveDepth = 64

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalChunk serializes a Chunk to bytes.
// Layout: id, text, source, vector length, vector values, inserted-at micros.
func MarshalChunk(chunk *core.Chunk) []byte {
	inserted := chunk.InsertedAt.UnixMicro()
	size := varint.Uint64.Size(uint64(chunk.Id)) +
		ord.String.Size(chunk.Text) +
		ord.String.Size(chunk.Source) +
		varint.PositiveInt.Size(len(chunk.Vector)) +
		varint.Int64.Size(inserted)
	for _, f := range chunk.Vector {
		size += raw.Float32.Size(f)
	}

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(chunk.Id), buf)
	n += ord.String.Marshal(chunk.Text, buf[n:])
	n += ord.String.Marshal(chunk.Source, buf[n:])
	n += varint.PositiveInt.Marshal(len(chunk.Vector), buf[n:])
	for _, f := range chunk.Vector {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	varint.Int64.Marshal(inserted, buf[n:])
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var (
		chunk core.Chunk
		n     int
	)

	id, m, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, chunkError("id", err)
	}
	chunk.Id = core.ID(id)
	n += m

	if chunk.Text, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, chunkError("text", err)
	}
	n += m

	if chunk.Source, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, chunkError("source", err)
	}
	n += m

	length, m, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, chunkError("vector length", err)
	}
	n += m
	if length > len(data)-n {
		return nil, fmt.Errorf("%w: vector length %d", ErrTruncatedData, length)
	}
	if length > 0 {
		chunk.Vector = make([]float32, length)
		for i := range chunk.Vector {
			if chunk.Vector[i], m, err = raw.Float32.Unmarshal(data[n:]); err != nil {
				return nil, chunkError("vector", err)
			}
			n += m
		}
	}

	inserted, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, chunkError("inserted at", err)
	}
	chunk.InsertedAt = time.UnixMicro(inserted).UTC()

	return &chunk, nil
}

func chunkError(field string, err error) error {
	return fmt.Errorf("%w: chunk %s: %w", ErrSerializationFailed, field, err)
}

// MarshalPrimitive serializes a primitive tree (nil, string, bool, integers,
// floats, []any and map[string]any) to bytes. Map keys are written in sorted
// order so equal trees encode identically.
func MarshalPrimitive(v any) ([]byte, error) {
	size, err := primitiveSize(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	marshalPrimitive(v, buf)
	return buf, nil
}

// UnmarshalPrimitive deserializes a primitive tree. Integers decode as int64
// and floats as float64.
func UnmarshalPrimitive(data []byte) (any, error) {
	v, _, err := unmarshalPrimitive(data, 0)
	return v, err
}

func primitiveSize(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 1, nil
	case string:
		return 1 + ord.String.Size(t), nil
	case bool:
		return 1 + ord.Bool.Size(t), nil
	case int:
		return 1 + varint.Int64.Size(int64(t)), nil
	case int32:
		return 1 + varint.Int64.Size(int64(t)), nil
	case int64:
		return 1 + varint.Int64.Size(t), nil
	case float32:
		return 1 + raw.Float64.Size(float64(t)), nil
	case float64:
		return 1 + raw.Float64.Size(t), nil
	case []any:
		size := 1 + varint.PositiveInt.Size(len(t))
		for _, item := range t {
			s, err := primitiveSize(item)
			if err != nil {
				return 0, err
			}
			size += s
		}
		return size, nil
	case map[string]any:
		size := 1 + varint.PositiveInt.Size(len(t))
		for k, item := range t {
			s, err := primitiveSize(item)
			if err != nil {
				return 0, err
			}
			size += ord.String.Size(k) + s
		}
		return size, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// marshalPrimitive assumes v was accepted by primitiveSize.
func marshalPrimitive(v any, buf []byte) int {
	switch t := v.(type) {
	case nil:
		buf[0] = kindNil
		return 1
	case string:
		buf[0] = kindString
		return 1 + ord.String.Marshal(t, buf[1:])
	case bool:
		buf[0] = kindBool
		return 1 + ord.Bool.Marshal(t, buf[1:])
	case int:
		buf[0] = kindInt
		return 1 + varint.Int64.Marshal(int64(t), buf[1:])
	case int32:
		buf[0] = kindInt
		return 1 + varint.Int64.Marshal(int64(t), buf[1:])
	case int64:
		buf[0] = kindInt
		return 1 + varint.Int64.Marshal(t, buf[1:])
	case float32:
		buf[0] = kindFloat
		return 1 + raw.Float64.Marshal(float64(t), buf[1:])
	case float64:
		buf[0] = kindFloat
		return 1 + raw.Float64.Marshal(t, buf[1:])
	case []any:
		buf[0] = kindList
		n := 1 + varint.PositiveInt.Marshal(len(t), buf[1:])
		for _, item := range t {
			n += marshalPrimitive(item, buf[n:])
		}
		return n
	case map[string]any:
		buf[0] = kindMap
		n := 1 + varint.PositiveInt.Marshal(len(t), buf[1:])
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			n += ord.String.Marshal(k, buf[n:])
			n += marshalPrimitive(t[k], buf[n:])
		}
		return n
	}
	return 0
}

func unmarshalPrimitive(data []byte, depth int) (any, int, error) {
	if depth > maxPrimitiveDepth {
		return nil, 0, fmt.Errorf("%w: nesting deeper than %d", ErrSerializationFailed, maxPrimitiveDepth)
	}
	if len(data) == 0 {
		return nil, 0, ErrTruncatedData
	}

	kind, body := data[0], data[1:]
	switch kind {
	case kindNil:
		return nil, 1, nil
	case kindString:
		s, n, err := ord.String.Unmarshal(body)
		if err != nil {
			return nil, 0, primitiveError(err)
		}
		return s, 1 + n, nil
	case kindBool:
		b, n, err := ord.Bool.Unmarshal(body)
		if err != nil {
			return nil, 0, primitiveError(err)
		}
		return b, 1 + n, nil
	case kindInt:
		i, n, err := varint.Int64.Unmarshal(body)
		if err != nil {
			return nil, 0, primitiveError(err)
		}
		return i, 1 + n, nil
	case kindFloat:
		f, n, err := raw.Float64.Unmarshal(body)
		if err != nil {
			return nil, 0, primitiveError(err)
		}
		return f, 1 + n, nil
	case kindList:
		length, n, err := varint.PositiveInt.Unmarshal(body)
		if err != nil {
			return nil, 0, primitiveError(err)
		}
		if length > len(body)-n {
			return nil, 0, fmt.Errorf("%w: list length %d", ErrTruncatedData, length)
		}
		list := make([]any, 0, length)
		for i := 0; i < length; i++ {
			item, m, err := unmarshalPrimitive(body[n:], depth+1)
			if err != nil {
				return nil, 0, err
			}
			list = append(list, item)
			n += m
		}
		return list, 1 + n, nil
	case kindMap:
		length, n, err := varint.PositiveInt.Unmarshal(body)
		if err != nil {
			return nil, 0, primitiveError(err)
		}
		if length > len(body)-n {
			return nil, 0, fmt.Errorf("%w: map length %d", ErrTruncatedData, length)
		}
		m := make(map[string]any, length)
		for i := 0; i < length; i++ {
			key, k, err := ord.String.Unmarshal(body[n:])
			if err != nil {
				return nil, 0, primitiveError(err)
			}
			n += k
			item, k, err := unmarshalPrimitive(body[n:], depth+1)
			if err != nil {
				return nil, 0, err
			}
			n += k
			m[key] = item
		}
		return m, 1 + n, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown kind %d", ErrSerializationFailed, kind)
	}
}

func primitiveError(err error) error {
	return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
}
