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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/lexis/core"
)

// sessionFormatVersion prefixes every encoded session.
const sessionFormatVersion = 1

// sessionStateMUS encodes core.SessionState in MUS format.
// Timestamps are stored as Unix microseconds in UTC.
type sessionStateMUS struct{}

// SessionStateMUS is the MUS serializer for core.SessionState.
var SessionStateMUS = sessionStateMUS{}

func (sessionStateMUS) Size(s core.SessionState) (size int) {
	size = varint.Int.Size(sessionFormatVersion)
	size += ord.String.Size(s.ID)
	size += varint.Int.Size(int(s.Stage))
	size += varint.Int.Size(s.StageOneKnown)
	size += ord.String.Size(string(s.Bucket))
	size += varint.Int.Size(s.StageTwoKnown)
	size += ord.Bool.Size(s.Profile != nil)
	if s.Profile != nil {
		size += varint.Int.Size(s.Profile.Estimate)
		size += ord.String.Size(string(s.Profile.Bucket))
		size += varint.Int.Size(int(s.Profile.Tier))
		size += ord.String.Size(s.Profile.Instruction)
	}
	size += varint.Int64.Size(s.CreatedAt.UnixMicro())
	size += varint.Int64.Size(s.UpdatedAt.UnixMicro())
	return
}

func (sessionStateMUS) Marshal(s core.SessionState, bs []byte) (n int) {
	n = varint.Int.Marshal(sessionFormatVersion, bs)
	n += ord.String.Marshal(s.ID, bs[n:])
	n += varint.Int.Marshal(int(s.Stage), bs[n:])
	n += varint.Int.Marshal(s.StageOneKnown, bs[n:])
	n += ord.String.Marshal(string(s.Bucket), bs[n:])
	n += varint.Int.Marshal(s.StageTwoKnown, bs[n:])
	n += ord.Bool.Marshal(s.Profile != nil, bs[n:])
	if s.Profile != nil {
		n += varint.Int.Marshal(s.Profile.Estimate, bs[n:])
		n += ord.String.Marshal(string(s.Profile.Bucket), bs[n:])
		n += varint.Int.Marshal(int(s.Profile.Tier), bs[n:])
		n += ord.String.Marshal(s.Profile.Instruction, bs[n:])
	}
	n += varint.Int64.Marshal(s.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(s.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (sessionStateMUS) Unmarshal(bs []byte) (s core.SessionState, n int, err error) {
	var (
		n1      int
		version int
		num     int
		str     string
		micros  int64
		present bool
	)

	version, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if version != sessionFormatVersion {
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		return
	}

	s.ID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	num, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Stage = core.QuizStage(num)

	s.StageOneKnown, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Bucket = core.Bucket(str)

	s.StageTwoKnown, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	present, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if present {
		profile := &core.VocabularyProfile{}

		profile.Estimate, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}

		str, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		profile.Bucket = core.Bucket(str)

		num, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		profile.Tier = core.Tier(num)

		profile.Instruction, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		s.Profile = profile
	}

	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.CreatedAt = time.UnixMicro(micros).UTC()

	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

// MarshalSessionState serializes a SessionState to bytes.
func MarshalSessionState(state *core.SessionState) []byte {
	buf := make([]byte, SessionStateMUS.Size(*state))
	SessionStateMUS.Marshal(*state, buf)
	return buf
}

// UnmarshalSessionState deserializes a SessionState from bytes.
func UnmarshalSessionState(data []byte) (*core.SessionState, error) {
	state, _, err := SessionStateMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &state, nil
}
