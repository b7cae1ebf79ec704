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

import "fmt"

// ExpressionSegment is a value slot in the statement.
type ExpressionSegment interface {
	Segment
	isExpression()
}

// SimpleExpression is an expression that carries a literal value or a parameter marker.
type SimpleExpression interface {
	ExpressionSegment
	isSimple()
}

type LiteralExpression struct {
	Start int
	Stop  int
	Value interface{}
}

func NewLiteral(start int, stop int, value interface{}) *LiteralExpression {
	return &LiteralExpression{Start: start, Stop: stop, Value: value}
}

func (l *LiteralExpression) StartIndex() int { return l.Start }
func (l *LiteralExpression) StopIndex() int  { return l.Stop }
func (l *LiteralExpression) isExpression()   {}
func (l *LiteralExpression) isSimple()       {}

func (l *LiteralExpression) String() string {
	return fmt.Sprint(l.Value)
}

// ParameterMarkerExpression is a '?' bound to the parameter at ParameterIndex (0 based).
type ParameterMarkerExpression struct {
	Start          int
	Stop           int
	ParameterIndex int
}

func NewParameterMarker(start int, stop int, index int) *ParameterMarkerExpression {
	return &ParameterMarkerExpression{Start: start, Stop: stop, ParameterIndex: index}
}

func (p *ParameterMarkerExpression) StartIndex() int { return p.Start }
func (p *ParameterMarkerExpression) StopIndex() int  { return p.Stop }
func (p *ParameterMarkerExpression) isExpression()   {}
func (p *ParameterMarkerExpression) isSimple()       {}

func (p *ParameterMarkerExpression) String() string {
	return "?"
}

// Provenance of derived expressions.
const (
	DerivedGeneratedKey = "generated key"
	DerivedEncrypt      = "encrypt"
	DerivedAvgCount     = "avg-count"
	DerivedAvgSum       = "avg-sum"
)

// DerivedLiteralExpression is a literal added by the rewrite engine, it has no position in the original sql.
type DerivedLiteralExpression struct {
	LiteralExpression
	Type string
}

func NewDerivedLiteral(value interface{}, derivedType string) *DerivedLiteralExpression {
	return &DerivedLiteralExpression{
		LiteralExpression: LiteralExpression{Value: value},
		Type:              derivedType,
	}
}

// DerivedParameterMarkerExpression is a parameter marker added by the rewrite engine.
type DerivedParameterMarkerExpression struct {
	ParameterMarkerExpression
	Type string
}

func NewDerivedParameterMarker(index int, derivedType string) *DerivedParameterMarkerExpression {
	return &DerivedParameterMarkerExpression{
		ParameterMarkerExpression: ParameterMarkerExpression{ParameterIndex: index},
		Type:                      derivedType,
	}
}

// IsParameterMarker reports whether the expression is an original or derived '?'.
func IsParameterMarker(expr ExpressionSegment) bool {
	switch expr.(type) {
	case *ParameterMarkerExpression, *DerivedParameterMarkerExpression:
		return true
	}
	return false
}

// ComplexExpression is any expression the engine does not interpret, e.g. function calls.
type ComplexExpression struct {
	Start int
	Stop  int
	Text  string
}

func (c *ComplexExpression) StartIndex() int { return c.Start }
func (c *ComplexExpression) StopIndex() int  { return c.Stop }
func (c *ComplexExpression) isExpression()   {}

type SubqueryExpression struct {
	Start  int
	Stop   int
	Select *SelectStatement
}

func (s *SubqueryExpression) StartIndex() int { return s.Start }
func (s *SubqueryExpression) StopIndex() int  { return s.Stop }
func (s *SubqueryExpression) isExpression()   {}

// CountParameterMarkers returns the number of '?' in the expressions.
func CountParameterMarkers(expressions []ExpressionSegment) int {
	c := 0
	for _, e := range expressions {
		if IsParameterMarker(e) {
			c++
		}
	}
	return c
}
