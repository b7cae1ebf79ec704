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

type PaginationValueSegment interface {
	Segment
	isPaginationValue()
}

type NumberLiteralLimitValueSegment struct {
	Start int
	Stop  int
	Value int64
}

func (n *NumberLiteralLimitValueSegment) StartIndex() int { return n.Start }
func (n *NumberLiteralLimitValueSegment) StopIndex() int  { return n.Stop }
func (n *NumberLiteralLimitValueSegment) isPaginationValue() {}

type ParameterMarkerLimitValueSegment struct {
	Start          int
	Stop           int
	ParameterIndex int
}

func (p *ParameterMarkerLimitValueSegment) StartIndex() int { return p.Start }
func (p *ParameterMarkerLimitValueSegment) StopIndex() int  { return p.Stop }
func (p *ParameterMarkerLimitValueSegment) isPaginationValue() {}

// LimitSegment is "LIMIT [offset,] row_count" or "LIMIT row_count OFFSET offset", Offset may be nil.
type LimitSegment struct {
	Start    int
	Stop     int
	Offset   PaginationValueSegment
	RowCount PaginationValueSegment
}

func (l *LimitSegment) StartIndex() int { return l.Start }
func (l *LimitSegment) StopIndex() int  { return l.Stop }
