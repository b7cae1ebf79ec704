/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package testkit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// MustMatch stops the test with a diff when got is not deeply equal to want.
func MustMatch(t testing.TB, want interface{}, got interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// IgnoreFields skips struct fields by name wherever they appear, unexported fields included.
func IgnoreFields(names ...string) cmp.Option {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}
	return cmp.FilterPath(func(path cmp.Path) bool {
		step, ok := path.Last().(cmp.StructField)
		return ok && skip[step.Name()]
	}, cmp.Ignore())
}
