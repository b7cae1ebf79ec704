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

package comparison

import (
	"math"
	"strings"
	"time"

	"github.com/pingcap/errors"
)

var ErrNotComparable = errors.New("sharding value must be a comparable type (number, string or time)")

// IsCompareSupported reports whether the value can be used as a sharding value.
func IsCompareSupported(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		string, []byte, time.Time:
		return true
	}
	return false
}

// Normalize converts a comparable value into its canonical representation:
// signed integers become int64, unsigned integers become int64 when they fit
// (uint64 otherwise), integral floats in the int64 range become int64, other
// floats become float64, byte slices become strings and times are kept in UTC.
// Two values that compare equal after normalization are equal map keys, except
// for uint64 values beyond the int64 range compared with floats.
func Normalize(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return normalizeUnsigned(uint64(v)), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return normalizeUnsigned(v), nil
	case float32:
		return normalizeFloat(float64(v)), nil
	case float64:
		return normalizeFloat(v), nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case time.Time:
		return v.Round(0).UTC(), nil
	}
	return nil, errors.Annotatef(ErrNotComparable, "type: %T", value)
}

func normalizeUnsigned(v uint64) interface{} {
	if v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}

func normalizeFloat(v float64) interface{} {
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		return int64(v)
	}
	return v
}

// MustNormalize is Normalize for values already known to be comparable.
func MustNormalize(value interface{}) interface{} {
	v, err := Normalize(value)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1. Numbers of different go types are compared by value,
// numbers and strings can not be compared with each other.
func Compare(a, b interface{}) (int, error) {
	na, err := Normalize(a)
	if err != nil {
		return 0, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return 0, err
	}

	switch x := na.(type) {
	case int64:
		switch y := nb.(type) {
		case int64:
			return compareInt64(x, y), nil
		case uint64:
			return -1, nil
		case float64:
			return compareFloat64(float64(x), y), nil
		}
	case uint64:
		switch y := nb.(type) {
		case int64:
			return 1, nil
		case uint64:
			return compareUInt64(x, y), nil
		case float64:
			return compareFloat64(float64(x), y), nil
		}
	case float64:
		switch y := nb.(type) {
		case int64:
			return compareFloat64(x, float64(y)), nil
		case uint64:
			return compareFloat64(x, float64(y)), nil
		case float64:
			return compareFloat64(x, y), nil
		}
	case string:
		if y, ok := nb.(string); ok {
			return strings.Compare(x, y), nil
		}
	case time.Time:
		if y, ok := nb.(time.Time); ok {
			switch {
			case x.Before(y):
				return -1, nil
			case x.After(y):
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, errors.Errorf("values have different types cannot be compared, a: %#v, b: %#v", a, b)
}

// Equals reports whether two comparable values are equal, incomparable values are never equal.
func Equals(a, b interface{}) bool {
	r, err := Compare(a, b)
	return err == nil && r == 0
}

func compareInt64(x, y int64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func compareUInt64(x, y uint64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func compareFloat64(x, y float64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}
