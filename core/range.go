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

package core

import (
	"fmt"

	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/pingcap/errors"
)

// Range is a closed interval, a missing bound means the range is unbounded on that side.
type Range interface {
	fmt.Stringer
	LowerBound() interface{}
	UpperBound() interface{}
	HasLower() bool
	HasUpper() bool
	Contains(value interface{}) (bool, error)
	// Intersect returns false when the two ranges have no overlap.
	Intersect(other Range) (Range, bool, error)
	HasIntersection(other Range) (bool, error)
}

var (
	ErrRangeInvalidBound = errors.New("the lower bound of the range cannot be greater than the upper bound")
)

type closedRange struct {
	lower interface{}
	upper interface{}
	hasL  bool
	hasU  bool
}

// NewRange creates [min, max], nil bound means unbounded.
func NewRange(min interface{}, max interface{}) (Range, error) {
	r := &closedRange{}
	if min != nil {
		v, err := comparison.Normalize(min)
		if err != nil {
			return nil, err
		}
		r.lower, r.hasL = v, true
	}
	if max != nil {
		v, err := comparison.Normalize(max)
		if err != nil {
			return nil, err
		}
		r.upper, r.hasU = v, true
	}

	if r.hasL && r.hasU {
		c, err := comparison.Compare(r.lower, r.upper)
		if err != nil {
			return nil, err
		}
		if c > 0 {
			return nil, ErrRangeInvalidBound
		}
	}
	return r, nil
}

// MustNewRange panics when the bounds are invalid, intended for tests and constants.
func MustNewRange(min interface{}, max interface{}) Range {
	r, err := NewRange(min, max)
	if err != nil {
		panic(err)
	}
	return r
}

func (d *closedRange) LowerBound() interface{} {
	return d.lower
}

func (d *closedRange) UpperBound() interface{} {
	return d.upper
}

func (d *closedRange) HasLower() bool {
	return d.hasL
}

func (d *closedRange) HasUpper() bool {
	return d.hasU
}

func (d *closedRange) Contains(value interface{}) (bool, error) {
	if d.hasL {
		r, err := comparison.Compare(d.lower, value)
		if err != nil {
			return false, err
		}
		if r > 0 {
			return false, nil
		}
	}
	if d.hasU {
		r, err := comparison.Compare(d.upper, value)
		if err != nil {
			return false, err
		}
		if r < 0 {
			return false, nil
		}
	}
	return true, nil
}

func (d *closedRange) HasIntersection(v Range) (bool, error) {
	if v == nil {
		return false, errors.New("the range used to intersect cannot be nil")
	}
	if (!v.HasLower() && !v.HasUpper()) || (!d.HasLower() && !d.HasUpper()) {
		return true, nil
	}
	first, second, err := sortByLower(d, v)
	if err != nil {
		return false, err
	}
	if first.HasUpper() && second.HasLower() {
		r, err := comparison.Compare(first.UpperBound(), second.LowerBound())
		if err != nil {
			return false, err
		}
		return r >= 0, nil
	}
	return true, nil
}

func sortByLower(v Range, d Range) (Range, Range, error) {
	if !v.HasLower() {
		return v, d, nil
	}
	if !d.HasLower() {
		return d, v, nil
	}
	r, err := comparison.Compare(v.LowerBound(), d.LowerBound())
	if err != nil {
		return nil, nil, err
	}
	if r < 0 {
		return v, d, nil
	}
	return d, v, nil
}

func (d *closedRange) Intersect(v Range) (Range, bool, error) {
	has, err := d.HasIntersection(v)
	if err != nil || !has {
		return nil, false, err
	}

	result := &closedRange{}
	switch {
	case d.hasL && v.HasLower():
		if result.lower, err = comparison.Max(d.lower, v.LowerBound()); err != nil {
			return nil, false, err
		}
		result.hasL = true
	case d.hasL:
		result.lower, result.hasL = d.lower, true
	case v.HasLower():
		result.lower, result.hasL = v.LowerBound(), true
	}

	switch {
	case d.hasU && v.HasUpper():
		if result.upper, err = comparison.Min(d.upper, v.UpperBound()); err != nil {
			return nil, false, err
		}
		result.hasU = true
	case d.hasU:
		result.upper, result.hasU = d.upper, true
	case v.HasUpper():
		result.upper, result.hasU = v.UpperBound(), true
	}
	return result, true, nil
}

func (d *closedRange) String() string {
	var min, max string
	if d.hasL {
		min = fmt.Sprint(d.lower)
	}
	if d.hasU {
		max = fmt.Sprint(d.upper)
	}
	return fmt.Sprintf("[%s..%s]", min, max)
}

// RangeEquals reports whether two ranges have the same bounds.
func RangeEquals(a Range, b Range) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.HasLower() != b.HasLower() || a.HasUpper() != b.HasUpper() {
		return false
	}
	if a.HasLower() && !comparison.Equals(a.LowerBound(), b.LowerBound()) {
		return false
	}
	if a.HasUpper() && !comparison.Equals(a.UpperBound(), b.UpperBound()) {
		return false
	}
	return true
}
