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

// FindSubqueryWheres returns the where clauses of all subqueries nested in the statement, depth first.
func FindSubqueryWheres(stmt Statement) []*WhereSegment {
	var result []*WhereSegment
	for _, sub := range FindSubqueries(stmt) {
		if sub.Where != nil {
			result = append(result, sub.Where)
		}
	}
	return result
}

// FindSubqueries returns all subqueries nested in the statement, depth first.
func FindSubqueries(stmt Statement) []*SelectStatement {
	var result []*SelectStatement
	for _, sub := range findSubqueries(stmt) {
		result = append(result, sub)
		result = append(result, FindSubqueries(sub)...)
	}
	return result
}

func findSubqueries(stmt Statement) []*SelectStatement {
	var result []*SelectStatement
	collect := func(expr ExpressionSegment) {
		if sub, ok := expr.(*SubqueryExpression); ok && sub.Select != nil {
			result = append(result, sub.Select)
		}
	}
	if ws, ok := stmt.(WhereStatement); ok && ws.GetWhere() != nil {
		for _, and := range ws.GetWhere().AndPredicates {
			for _, p := range and.Predicates {
				for _, e := range p.Expressions() {
					collect(e)
				}
			}
		}
	}
	switch s := stmt.(type) {
	case *InsertStatement:
		for _, row := range s.Values {
			for _, e := range row.Values {
				collect(e)
			}
		}
	case *UpdateStatement:
		if s.SetAssignment != nil {
			for _, a := range s.SetAssignment.Assignments {
				collect(a.Value)
			}
		}
	}
	return result
}

// FindColumnSegments returns every column reference of the statement that carries an owner,
// in projections, predicates, joins, group by, order by and assignments. Subqueries are included.
func FindColumnSegments(stmt Statement) []*ColumnSegment {
	var result []*ColumnSegment
	add := func(c *ColumnSegment) {
		if c != nil && c.Owner != nil {
			result = append(result, c)
		}
	}
	addPredicates := func(predicates []*PredicateSegment) {
		for _, p := range predicates {
			add(p.Column)
			for _, e := range p.Expressions() {
				if c, ok := e.(*ColumnSegment); ok {
					add(c)
				}
			}
		}
	}
	addItems := func(items []OrderByItemSegment) {
		for _, item := range items {
			if c, ok := item.(*ColumnOrderByItemSegment); ok {
				add(c.Column)
			}
		}
	}

	if ws, ok := stmt.(WhereStatement); ok && ws.GetWhere() != nil {
		for _, and := range ws.GetWhere().AndPredicates {
			addPredicates(and.Predicates)
		}
	}

	switch s := stmt.(type) {
	case *SelectStatement:
		if s.Projections != nil {
			for _, p := range s.Projections.Projections {
				if c, ok := p.(*ColumnProjectionSegment); ok {
					add(c.Column)
				}
			}
		}
		for _, j := range s.Joins {
			addPredicates(j.On)
			for _, c := range j.Using {
				add(c)
			}
		}
		if s.GroupBy != nil {
			addItems(s.GroupBy.Items)
		}
		if s.OrderBy != nil {
			addItems(s.OrderBy.Items)
		}
	case *UpdateStatement:
		if s.SetAssignment != nil {
			for _, a := range s.SetAssignment.Assignments {
				add(a.Column)
			}
		}
	}

	for _, sub := range findSubqueries(stmt) {
		result = append(result, FindColumnSegments(sub)...)
	}
	return result
}

// FindShorthandOwners returns the owners of "owner.*" projections.
func FindShorthandOwners(stmt *SelectStatement) []*OwnerSegment {
	var result []*OwnerSegment
	if stmt.Projections == nil {
		return result
	}
	for _, p := range stmt.Projections.Projections {
		if s, ok := p.(*ShorthandProjectionSegment); ok && s.Owner != nil {
			result = append(result, s.Owner)
		}
	}
	return result
}
