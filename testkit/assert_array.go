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

	"github.com/emirpasic/gods/utils"
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/stretchr/testify/assert"
)

type equatable interface {
	Equals(v interface{}) bool
}

// sortedCopy orders comparable values naturally and everything else by its text.
func sortedCopy(values []interface{}) []interface{} {
	result := append([]interface{}(nil), values...)
	utils.Sort(result, func(a, b interface{}) int {
		if i, err := comparison.Compare(a, b); err == nil {
			return i
		}
		return utils.StringComparator(fmt.Sprint(a), fmt.Sprint(b))
	})
	return result
}

func describeArray(values []interface{}) string {
	if len(values) == 0 {
		return "<empty array>"
	}
	sb := core.NewStringBuilder()
	sb.WriteJoin(", ", sortedCopy(values)...)
	return sb.String()
}

func AssertStrArrayEquals(t assert.TestingT, expected []string, actual []string, msgAndArgs ...interface{}) bool {
	return AssertArrayEquals(t, toInterfaces(expected), toInterfaces(actual), msgAndArgs...)
}

// AssertArrayEquals asserts two arrays have the same items regardless of order,
// numbers of different go types are equal when their values are equal.
func AssertArrayEquals(t assert.TestingT, expected []interface{}, actual []interface{}, msgAndArgs ...interface{}) bool {
	same := len(expected) == len(actual)
	for i := 0; same && i < len(expected); i++ {
		same = containsItem(actual, expected[i])
	}
	if same {
		return true
	}
	sb := core.NewStringBuilder()
	sb.WriteLine("arrays have different items")
	sb.WriteLine("expected: ", describeArray(expected))
	sb.Write("actual:   ", describeArray(actual))
	return assert.Fail(t, sb.String(), msgAndArgs...)
}

func toInterfaces(values []string) []interface{} {
	r := make([]interface{}, len(values))
	for i, value := range values {
		r[i] = value
	}
	return r
}

func containsItem(items []interface{}, value interface{}) bool {
	for _, item := range items {
		if item == value || comparison.Equals(item, value) {
			return true
		}
		if eq, ok := value.(equatable); ok && eq.Equals(item) {
			return true
		}
	}
	return false
}
