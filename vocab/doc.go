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


// Package vocab estimates a learner's vocabulary and mines study items.
//
// The quiz has two stages. The user marks the words they know from
// StageOneWords; the count picks a bucket, which picks a second list from
// StageTwoWords. The second count turns into a size estimate and a tier,
// and the tier selects an instruction that biases the miner. Service runs
// this flow per session over a storage.SessionRepository.
//
// Miner sends pasted text to a chat model in JSON mode and validates every
// returned item. Unusable responses become a *ParseError in the result
// rather than a failure of the call.
package vocab
