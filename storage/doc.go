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


// Package storage provides the session store abstraction for lexis.
//
// Quiz progress is the only state that survives between requests. It lives
// behind SessionRepository, keyed by session id, with a TTL after which a
// session is gone. Two backends are provided:
//
//   - storage/badger: embedded BadgerDB, on disk or in memory
//   - storage/redis: a shared Redis server for multi-instance deployments
//
// Both store core.SessionState encoded with SessionStateMUS.
//
// # Constructor Return Type Pattern
//
// Package-level constructors that hand a store to application code return
// the storage.SessionRepository interface:
//
//	store, err := badger.NewSessionStore("/path/to/db", ttl)
//
// Constructors used to assemble a backend inside its own package, such as
// badger.NewSessionRepository, may return concrete types.
//
// # Usage
//
//	store, err := badger.NewSessionStore("", storage.DefaultSessionTTL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	state := core.NewSessionState(id)
//	err = store.SaveSession(ctx, state)
package storage
