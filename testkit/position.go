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
	"fmt"
	"strings"
)

// Pos returns the [start, stop] indexes of the first occurrence of fragment in sql.
func Pos(sql string, fragment string) (int, int) {
	return PosN(sql, fragment, 1)
}

// PosN returns the [start, stop] indexes of the nth (1 based) occurrence of fragment in sql.
// It panics when the fragment does not occur n times, tests build wrong statements otherwise.
func PosN(sql string, fragment string, n int) (int, int) {
	offset := 0
	for i := 1; ; i++ {
		idx := strings.Index(sql[offset:], fragment)
		if idx < 0 {
			panic(fmt.Sprintf("fragment '%s' occurs less than %d times in sql: %s", fragment, n, sql))
		}
		start := offset + idx
		if i == n {
			return start, start + len(fragment) - 1
		}
		offset = start + len(fragment)
	}
}

// Start returns the first index of fragment in sql.
func Start(sql string, fragment string) int {
	s, _ := Pos(sql, fragment)
	return s
}

// Stop returns the last index of the first occurrence of fragment in sql.
func Stop(sql string, fragment string) int {
	_, e := Pos(sql, fragment)
	return e
}
