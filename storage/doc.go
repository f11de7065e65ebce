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


// Package storage provides the storage abstraction layer for depositbot.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic:
//
//   - ChunkRepository: document chunks and their embeddings (the vector index data)
//   - SessionRepository: per-chat conversation memory in primitive form
//   - VectorSearcher: brute-force similarity search over chunk vectors
//
// Public constructors in implementation packages return these interfaces:
//
//	chunks, err := badger.NewChunkRepository(backend)  // storage.ChunkRepository
//
// Values are encoded with mus-go codecs defined in serialization.go. Session
// state is stored as a tagged primitive tree so that any map/slice/scalar value
// produced by memory.ToPrimitive survives a restart.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
