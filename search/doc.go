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


// Package search provides the vector index behind answer retrieval.
//
// Index stores embedded document chunks in a storage.ChunkRepository and
// implements the langchaingo vectorstores.VectorStore interface, so it can be
// wrapped with vectorstores.ToRetriever. Two selection modes are supported:
//   - ModeMMR: maximal marginal relevance over FetchK candidates
//   - ModeSimilarityThreshold: every candidate at or above ScoreThreshold
//
// With Lambda set to 1.0, MMR selection reduces to top-k by relevance.
package search
