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

package statement

const (
	OperatorEqual        = "="
	OperatorNotEqual     = "!="
	OperatorLessThan     = "<"
	OperatorGreaterThan  = ">"
	OperatorLessEqual    = "<="
	OperatorGreaterEqual = ">="
	OperatorLike         = "LIKE"
)

type PredicateRightValue interface {
	isPredicateRightValue()
}

type CompareRightValue struct {
	Operator   string
	Expression ExpressionSegment
}

type InRightValue struct {
	Expressions []ExpressionSegment
}

type BetweenRightValue struct {
	Between ExpressionSegment
	And     ExpressionSegment
}

func (c *CompareRightValue) isPredicateRightValue() {}
func (i *InRightValue) isPredicateRightValue()      {}
func (b *BetweenRightValue) isPredicateRightValue() {}

// PredicateSegment is "column <right value>".
type PredicateSegment struct {
	Start      int
	Stop       int
	Column     *ColumnSegment
	RightValue PredicateRightValue
}

func (p *PredicateSegment) StartIndex() int { return p.Start }
func (p *PredicateSegment) StopIndex() int  { return p.Stop }

// Expressions returns the value expressions of the right value.
func (p *PredicateSegment) Expressions() []ExpressionSegment {
	switch rv := p.RightValue.(type) {
	case *CompareRightValue:
		return []ExpressionSegment{rv.Expression}
	case *InRightValue:
		return rv.Expressions
	case *BetweenRightValue:
		return []ExpressionSegment{rv.Between, rv.And}
	}
	return nil
}

// AndPredicate is one group of AND-combined predicates.
type AndPredicate struct {
	Predicates []*PredicateSegment
}

// WhereSegment is the where clause normalized into an OR of AND groups.
type WhereSegment struct {
	Start         int
	Stop          int
	AndPredicates []*AndPredicate
}

func (w *WhereSegment) StartIndex() int { return w.Start }
func (w *WhereSegment) StopIndex() int  { return w.Stop }
