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

package collection

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/endink/sharding-rewrite/core/comparison"
)

// ValueSet holds normalized sharding values in insertion order,
// values that compare equal (1, int64(1), 1.0) are the same element.
type ValueSet struct {
	items *linkedhashset.Set
}

// NewValueSet instantiates a new set and adds the passed values, if any, to the set.
func NewValueSet(values ...interface{}) (*ValueSet, error) {
	set := &ValueSet{items: linkedhashset.New()}
	if err := set.Add(values...); err != nil {
		return nil, err
	}
	return set, nil
}

// Add adds the items (one or more) to the set, non comparable items are rejected.
func (set *ValueSet) Add(items ...interface{}) error {
	for _, item := range items {
		v, err := comparison.Normalize(item)
		if err != nil {
			return err
		}
		if !set.contains(v) {
			set.items.Add(v)
		}
	}
	return nil
}

// Contains check if the item is present in the set.
func (set *ValueSet) Contains(item interface{}) bool {
	v, err := comparison.Normalize(item)
	if err != nil {
		return false
	}
	return set.contains(v)
}

func (set *ValueSet) contains(normalized interface{}) bool {
	if set.items.Contains(normalized) {
		return true
	}
	return set.items.Any(func(index int, value interface{}) bool {
		return comparison.Equals(value, normalized)
	})
}

// Retain returns a new set holding the items matched by the predicate, order is kept.
func (set *ValueSet) Retain(predicate func(item interface{}) (bool, error)) (*ValueSet, error) {
	result := &ValueSet{items: linkedhashset.New()}
	for _, item := range set.items.Values() {
		ok, err := predicate(item)
		if err != nil {
			return nil, err
		}
		if ok {
			result.items.Add(item)
		}
	}
	return result, nil
}

// Intersect returns the items present in both sets using the order of the receiver.
func (set *ValueSet) Intersect(other *ValueSet) *ValueSet {
	result, _ := set.Retain(func(item interface{}) (bool, error) {
		return other.contains(item), nil
	})
	return result
}

// Empty returns true if set does not contain any elements.
func (set *ValueSet) Empty() bool {
	return set.items.Empty()
}

// Size returns number of elements within the set.
func (set *ValueSet) Size() int {
	return set.items.Size()
}

// Values returns all items in insertion order.
func (set *ValueSet) Values() []interface{} {
	return set.items.Values()
}

func (set *ValueSet) String() string {
	items := make([]string, 0, set.Size())
	for _, v := range set.items.Values() {
		items = append(items, fmt.Sprint(v))
	}
	return "{" + strings.Join(items, ", ") + "}"
}
