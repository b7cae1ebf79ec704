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

import "strings"

type AggregationType int

const (
	AggregationMax AggregationType = iota
	AggregationMin
	AggregationSum
	AggregationCount
	AggregationAvg
)

func (a AggregationType) String() string {
	switch a {
	case AggregationMax:
		return "MAX"
	case AggregationMin:
		return "MIN"
	case AggregationSum:
		return "SUM"
	case AggregationCount:
		return "COUNT"
	case AggregationAvg:
		return "AVG"
	}
	return ""
}

func ParseAggregationType(name string) (AggregationType, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MAX":
		return AggregationMax, true
	case "MIN":
		return AggregationMin, true
	case "SUM":
		return AggregationSum, true
	case "COUNT":
		return AggregationCount, true
	case "AVG":
		return AggregationAvg, true
	}
	return 0, false
}

type ProjectionSegment interface {
	Segment
	isProjection()
}

// ProjectionsSegment is the select list, Stop is the last index of the last projection.
type ProjectionsSegment struct {
	Start       int
	Stop        int
	Distinct    bool
	Projections []ProjectionSegment
}

func (p *ProjectionsSegment) StartIndex() int { return p.Start }
func (p *ProjectionsSegment) StopIndex() int  { return p.Stop }

type ColumnProjectionSegment struct {
	Start  int
	Stop   int
	Column *ColumnSegment
	Alias  string
}

func (c *ColumnProjectionSegment) StartIndex() int { return c.Start }
func (c *ColumnProjectionSegment) StopIndex() int  { return c.Stop }
func (c *ColumnProjectionSegment) isProjection()   {}

// AggregationProjectionSegment is e.g. "AVG(amount)", InnerExpression holds "(amount)".
type AggregationProjectionSegment struct {
	Start           int
	Stop            int
	Type            AggregationType
	InnerExpression string
	Alias           string
}

func (a *AggregationProjectionSegment) StartIndex() int { return a.Start }
func (a *AggregationProjectionSegment) StopIndex() int  { return a.Stop }
func (a *AggregationProjectionSegment) isProjection()   {}

// Expression returns the aggregation text without alias, e.g. "AVG(amount)".
func (a *AggregationProjectionSegment) Expression() string {
	return a.Type.String() + a.InnerExpression
}

// ShorthandProjectionSegment is "*" or "owner.*".
type ShorthandProjectionSegment struct {
	Start int
	Stop  int
	Owner *OwnerSegment
}

func (s *ShorthandProjectionSegment) StartIndex() int { return s.Start }
func (s *ShorthandProjectionSegment) StopIndex() int  { return s.Stop }
func (s *ShorthandProjectionSegment) isProjection()   {}

type ExpressionProjectionSegment struct {
	Start int
	Stop  int
	Text  string
	Alias string
}

func (e *ExpressionProjectionSegment) StartIndex() int { return e.Start }
func (e *ExpressionProjectionSegment) StopIndex() int  { return e.Stop }
func (e *ExpressionProjectionSegment) isProjection()   {}
