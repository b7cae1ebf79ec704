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

type Statement interface {
	GetTables() []*TableSegment
	GetParameterCount() int
}

// WhereStatement is a statement that may carry a where clause.
type WhereStatement interface {
	Statement
	GetWhere() *WhereSegment
}

// JoinSegment is "JOIN table ON ..." or "JOIN table USING (...)".
type JoinSegment struct {
	Table *TableSegment
	On    []*PredicateSegment
	Using []*ColumnSegment
}

type SelectStatement struct {
	Projections    *ProjectionsSegment
	Tables         []*TableSegment
	Joins          []*JoinSegment
	Where          *WhereSegment
	GroupBy        *GroupBySegment
	OrderBy        *OrderBySegment
	Limit          *LimitSegment
	ParameterCount int
}

func (s *SelectStatement) GetTables() []*TableSegment {
	tables := make([]*TableSegment, 0, len(s.Tables)+len(s.Joins))
	tables = append(tables, s.Tables...)
	for _, j := range s.Joins {
		tables = append(tables, j.Table)
	}
	return tables
}

func (s *SelectStatement) GetParameterCount() int  { return s.ParameterCount }
func (s *SelectStatement) GetWhere() *WhereSegment { return s.Where }

// InsertColumnsSegment is the "(a, b, c)" column list, Start and Stop are the parentheses.
type InsertColumnsSegment struct {
	Start   int
	Stop    int
	Columns []*ColumnSegment
}

func (i *InsertColumnsSegment) StartIndex() int { return i.Start }
func (i *InsertColumnsSegment) StopIndex() int  { return i.Stop }

// InsertValuesSegment is one "(v1, v2, ...)" row, Start and Stop are the parentheses.
type InsertValuesSegment struct {
	Start  int
	Stop   int
	Values []ExpressionSegment
}

func (i *InsertValuesSegment) StartIndex() int { return i.Start }
func (i *InsertValuesSegment) StopIndex() int  { return i.Stop }

type AssignmentSegment struct {
	Start  int
	Stop   int
	Column *ColumnSegment
	Value  ExpressionSegment
}

func (a *AssignmentSegment) StartIndex() int { return a.Start }
func (a *AssignmentSegment) StopIndex() int  { return a.Stop }

// SetAssignmentSegment is "SET a = 1, b = ?", Start is the SET keyword, Stop the end of the last assignment.
type SetAssignmentSegment struct {
	Start       int
	Stop        int
	Assignments []*AssignmentSegment
}

func (s *SetAssignmentSegment) StartIndex() int { return s.Start }
func (s *SetAssignmentSegment) StopIndex() int  { return s.Stop }

// InsertStatement is either the VALUES form (Values) or the SET form (SetAssignment).
type InsertStatement struct {
	Table          *TableSegment
	Columns        *InsertColumnsSegment
	Values         []*InsertValuesSegment
	SetAssignment  *SetAssignmentSegment
	ParameterCount int
}

func (i *InsertStatement) GetTables() []*TableSegment {
	return []*TableSegment{i.Table}
}

func (i *InsertStatement) GetParameterCount() int {
	return i.ParameterCount
}

// ColumnNames returns the explicit column names, from the column list or the SET assignments.
func (i *InsertStatement) ColumnNames() []string {
	var names []string
	if i.SetAssignment != nil {
		for _, a := range i.SetAssignment.Assignments {
			names = append(names, a.Column.Name)
		}
		return names
	}
	if i.Columns != nil {
		for _, c := range i.Columns.Columns {
			names = append(names, c.Name)
		}
	}
	return names
}

// UseDefaultColumns reports whether the insert omits the column list.
func (i *InsertStatement) UseDefaultColumns() bool {
	return i.SetAssignment == nil && (i.Columns == nil || len(i.Columns.Columns) == 0)
}

type UpdateStatement struct {
	Tables         []*TableSegment
	SetAssignment  *SetAssignmentSegment
	Where          *WhereSegment
	ParameterCount int
}

func (u *UpdateStatement) GetTables() []*TableSegment { return u.Tables }
func (u *UpdateStatement) GetParameterCount() int     { return u.ParameterCount }
func (u *UpdateStatement) GetWhere() *WhereSegment    { return u.Where }

type DeleteStatement struct {
	Tables         []*TableSegment
	Where          *WhereSegment
	ParameterCount int
}

func (d *DeleteStatement) GetTables() []*TableSegment { return d.Tables }
func (d *DeleteStatement) GetParameterCount() int     { return d.ParameterCount }
func (d *DeleteStatement) GetWhere() *WhereSegment    { return d.Where }
