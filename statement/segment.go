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

// Package statement holds the parsed SQL shapes consumed by routing and rewriting.
// Every segment carries the [start, stop] byte offsets (both inclusive) of its text in the original SQL.
package statement

import "strings"

type Segment interface {
	StartIndex() int
	StopIndex() int
}

type OwnerSegment struct {
	Start int
	Stop  int
	Name  string
	Quote string
}

func (o *OwnerSegment) StartIndex() int { return o.Start }
func (o *OwnerSegment) StopIndex() int  { return o.Stop }

// TableSegment is a table reference, Start and Stop cover the table name only (owner and alias excluded).
type TableSegment struct {
	Start int
	Stop  int
	Owner *OwnerSegment
	Name  string
	Alias string
	Quote string
}

func (t *TableSegment) StartIndex() int { return t.Start }
func (t *TableSegment) StopIndex() int  { return t.Stop }

func (t *TableSegment) LowerName() string {
	return strings.ToLower(t.Name)
}

// AliasOrName returns the alias if present, the table name otherwise.
func (t *TableSegment) AliasOrName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// ColumnSegment is a column reference, Start and Stop cover the column name only.
type ColumnSegment struct {
	Start int
	Stop  int
	Owner *OwnerSegment
	Name  string
	Quote string
}

func (c *ColumnSegment) StartIndex() int { return c.Start }
func (c *ColumnSegment) StopIndex() int  { return c.Stop }
func (c *ColumnSegment) isExpression()   {}

// QualifiedName returns owner.name or name.
func (c *ColumnSegment) QualifiedName() string {
	if c.Owner != nil {
		return c.Owner.Name + "." + c.Name
	}
	return c.Name
}

// StartWithOwner returns the first index of the column text including the owner qualifier.
func (c *ColumnSegment) StartWithOwner() int {
	if c.Owner != nil {
		return c.Owner.Start
	}
	return c.Start
}
