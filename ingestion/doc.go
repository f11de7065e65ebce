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


// Package ingestion builds the knowledge base behind the vector index.
//
// A Loader walks a directory of deposit documents (txt, json, docx, pdf, html),
// normalizes whitespace, splits each document with the langchaingo recursive
// character splitter and tags every chunk with the file stem of its source.
//
// A Pipeline feeds those chunks to the index in batches on an ants worker pool:
//
//	loader, _ := ingestion.NewLoader()
//	pipeline, _ := ingestion.NewPipeline(loader, index)
//	defer pipeline.Release()
//
//	stats, err := pipeline.Ingest(ctx, "docs")
package ingestion
