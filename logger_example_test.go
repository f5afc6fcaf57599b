// Copyright 2026 The nutsdb Author. All rights reserved.
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

package nutscan_test

import (
	"context"
	"fmt"

	"github.com/nutsdb/nutscan"
	"github.com/nutsdb/nutscan/internal/testutils"
)

type testLogger struct{}

func (l *testLogger) Printf(format string, args ...any) {
	fmt.Printf("testlogger:"+format+"\n", args...)
}

func ExampleSetLogger() {
	nutscan.SetLogger(&testLogger{})
	defer nutscan.SetLogger(nil)

	store := &testutils.Store{
		Keyspace: map[nutscan.Target]testutils.Steps{
			nutscan.DBTarget(0): {{Next: nutscan.CursorStart, Items: []string{"gone"}}},
		},
	}
	s, _ := nutscan.NewSession(store, nutscan.StaticTargets{nutscan.DBTarget(0)}, "*", nutscan.DefaultOptions)
	batch, more, _ := s.LoadNext(context.Background(), false)
	fmt.Println(len(batch), more)
	// Output:
	// testlogger:dropped 1 vanished or unsupported keys from db0
	// 0 false
}
