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

package rewriting

import (
	"strings"

	"github.com/endink/sharding-rewrite/rewriting/token"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/pingcap/errors"
)

var ErrTokenOverlap = errors.New("sql tokens overlap or are not sorted by start index")

// Assemble applies the tokens to the sql, the tokens must be sorted by start index and must not overlap.
// Text outside the tokens is copied unchanged.
func Assemble(sql string, tokens []token.SQLToken, unit *routing.RouteUnit) (string, error) {
	if len(tokens) == 0 {
		return sql, nil
	}
	sb := &strings.Builder{}
	sb.Grow(len(sql))
	cursor := 0
	for _, t := range tokens {
		start, stop := t.StartIndex(), t.StopIndex()
		if start < cursor || stop < start-1 || start > len(sql) || stop >= len(sql) {
			return "", errors.Annotatef(ErrTokenOverlap, "token %T at [%d, %d], cursor: %d", t, start, stop, cursor)
		}
		sb.WriteString(sql[cursor:start])
		sb.WriteString(t.Text(unit))
		cursor = stop + 1
	}
	sb.WriteString(sql[cursor:])
	return sb.String(), nil
}
