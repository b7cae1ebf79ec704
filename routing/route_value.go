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

package routing

import (
	"fmt"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/collection"
	"github.com/pingcap/errors"
)

type RouteValueKind int

const (
	RouteValueList RouteValueKind = iota
	RouteValueRange
	RouteValueAlwaysFalse
)

func (k RouteValueKind) String() string {
	switch k {
	case RouteValueList:
		return "list"
	case RouteValueRange:
		return "range"
	case RouteValueAlwaysFalse:
		return "always-false"
	}
	return fmt.Sprintf("RouteValueKind(%d)", int(k))
}

var ErrUnsupportedRouteValue = errors.New("unsupported route value")

// RouteValue is the value(s) a sharding column is constrained to.
type RouteValue interface {
	fmt.Stringer
	Kind() RouteValueKind
	Column() core.Column
}

// ListRouteValue comes from '=' and IN predicates.
type ListRouteValue struct {
	column core.Column
	Values *collection.ValueSet
}

func NewListRouteValue(column core.Column, values ...interface{}) (*ListRouteValue, error) {
	set, err := collection.NewValueSet(values...)
	if err != nil {
		return nil, err
	}
	return &ListRouteValue{column: column, Values: set}, nil
}

func (l *ListRouteValue) Kind() RouteValueKind { return RouteValueList }
func (l *ListRouteValue) Column() core.Column  { return l.column }

func (l *ListRouteValue) String() string {
	return fmt.Sprintf("%s in %s", l.column, l.Values)
}

// RangeRouteValue comes from BETWEEN predicates.
type RangeRouteValue struct {
	column core.Column
	Range  core.Range
}

func NewRangeRouteValue(column core.Column, r core.Range) *RangeRouteValue {
	return &RangeRouteValue{column: column, Range: r}
}

func (r *RangeRouteValue) Kind() RouteValueKind { return RouteValueRange }
func (r *RangeRouteValue) Column() core.Column  { return r.column }

func (r *RangeRouteValue) String() string {
	return fmt.Sprintf("%s in %s", r.column, r.Range)
}

// AlwaysFalseRouteValue absorbs every value it is merged with.
type AlwaysFalseRouteValue struct {
	column core.Column
}

func NewAlwaysFalseRouteValue(column core.Column) *AlwaysFalseRouteValue {
	return &AlwaysFalseRouteValue{column: column}
}

func (a *AlwaysFalseRouteValue) Kind() RouteValueKind { return RouteValueAlwaysFalse }
func (a *AlwaysFalseRouteValue) Column() core.Column  { return a.column }

func (a *AlwaysFalseRouteValue) String() string {
	return fmt.Sprintf("%s: always false", a.column)
}

// Merge intersects two route values of the same column, an empty intersection is always false.
func Merge(a RouteValue, b RouteValue) (RouteValue, error) {
	if a == nil || b == nil {
		return nil, errors.Annotate(ErrUnsupportedRouteValue, "route value can not be nil")
	}
	if a.Column() != b.Column() {
		return nil, errors.Errorf("route values of different columns can not be merged: %s, %s", a.Column(), b.Column())
	}
	column := a.Column()
	if a.Kind() == RouteValueAlwaysFalse || b.Kind() == RouteValueAlwaysFalse {
		return NewAlwaysFalseRouteValue(column), nil
	}

	switch x := a.(type) {
	case *ListRouteValue:
		switch y := b.(type) {
		case *ListRouteValue:
			return listOrAlwaysFalse(column, x.Values.Intersect(y.Values)), nil
		case *RangeRouteValue:
			return mergeListAndRange(x, y)
		}
	case *RangeRouteValue:
		switch y := b.(type) {
		case *ListRouteValue:
			return mergeListAndRange(y, x)
		case *RangeRouteValue:
			r, ok, err := x.Range.Intersect(y.Range)
			if err != nil {
				return nil, err
			}
			if !ok {
				return NewAlwaysFalseRouteValue(column), nil
			}
			return NewRangeRouteValue(column, r), nil
		}
	}
	return nil, errors.Annotatef(ErrUnsupportedRouteValue, "%T, %T", a, b)
}

func mergeListAndRange(list *ListRouteValue, r *RangeRouteValue) (RouteValue, error) {
	retained, err := list.Values.Retain(r.Range.Contains)
	if err != nil {
		return nil, err
	}
	return listOrAlwaysFalse(list.column, retained), nil
}

func listOrAlwaysFalse(column core.Column, values *collection.ValueSet) RouteValue {
	if values.Empty() {
		return NewAlwaysFalseRouteValue(column)
	}
	return &ListRouteValue{column: column, Values: values}
}

// RouteValueEquals reports whether two route values constrain the same column to the same values.
func RouteValueEquals(a RouteValue, b RouteValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Column() != b.Column() {
		return false
	}
	switch x := a.(type) {
	case *ListRouteValue:
		y := b.(*ListRouteValue)
		if x.Values.Size() != y.Values.Size() {
			return false
		}
		for _, v := range x.Values.Values() {
			if !y.Values.Contains(v) {
				return false
			}
		}
		return true
	case *RangeRouteValue:
		return core.RangeEquals(x.Range, b.(*RangeRouteValue).Range)
	}
	return true
}
