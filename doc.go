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



// Package lexis answers questions from one author's essays and helps
// learners study English vocabulary.
//
// An Engine wires the pieces together: passages are split from a plain text
// corpus, embedded on first use and ranked by cosine similarity against a
// query. Ask grounds a persona answer on the best few passages. The
// vocabulary quiz estimates a learner's level across two stages and keeps
// its state in a session store; the miner then picks study items from
// English text at that level.
//
// Basic usage:
//
//	cfg, err := config.Load("lexis.yaml")
//	if err != nil {
//	    return err
//	}
//	engine, err := lexis.NewEngine(cfg)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	result, err := engine.Ask(ctx, "如何管理时间？", 0)
package lexis
