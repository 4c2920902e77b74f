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

// Package search retrieves corpus passages for a query.
//
// Rank scores passage vectors against a query vector by cosine similarity,
// keeps the top k and drops anything at or below a threshold. The Searcher
// type runs that flow over a cached index:
//   - Semantic search embeds the query and ranks every passage
//   - Keyword search matches passage text directly and needs no embedding
//
// A SearchMonitor can observe each stage of a semantic search.
package search
