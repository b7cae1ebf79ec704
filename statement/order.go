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

type OrderDirection int

const (
	OrderAsc OrderDirection = iota
	OrderDesc
)

func (o OrderDirection) String() string {
	if o == OrderDesc {
		return "DESC"
	}
	return "ASC"
}

type OrderByItemSegment interface {
	Segment
	Direction() OrderDirection
}

type ColumnOrderByItemSegment struct {
	Start          int
	Stop           int
	Column         *ColumnSegment
	OrderDirection OrderDirection
}

func (c *ColumnOrderByItemSegment) StartIndex() int           { return c.Start }
func (c *ColumnOrderByItemSegment) StopIndex() int            { return c.Stop }
func (c *ColumnOrderByItemSegment) Direction() OrderDirection { return c.OrderDirection }

// IndexOrderByItemSegment refers to a projection by its 1 based position.
type IndexOrderByItemSegment struct {
	Start          int
	Stop           int
	Index          int
	OrderDirection OrderDirection
}

func (i *IndexOrderByItemSegment) StartIndex() int           { return i.Start }
func (i *IndexOrderByItemSegment) StopIndex() int            { return i.Stop }
func (i *IndexOrderByItemSegment) Direction() OrderDirection { return i.OrderDirection }

type ExpressionOrderByItemSegment struct {
	Start          int
	Stop           int
	Text           string
	OrderDirection OrderDirection
}

func (e *ExpressionOrderByItemSegment) StartIndex() int           { return e.Start }
func (e *ExpressionOrderByItemSegment) StopIndex() int            { return e.Stop }
func (e *ExpressionOrderByItemSegment) Direction() OrderDirection { return e.OrderDirection }

type OrderBySegment struct {
	Start int
	Stop  int
	Items []OrderByItemSegment
}

func (o *OrderBySegment) StartIndex() int { return o.Start }
func (o *OrderBySegment) StopIndex() int  { return o.Stop }

type GroupBySegment struct {
	Start int
	Stop  int
	Items []OrderByItemSegment
}

func (g *GroupBySegment) StartIndex() int { return g.Start }
func (g *GroupBySegment) StopIndex() int  { return g.Stop }
