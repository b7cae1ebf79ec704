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

package explain

import (
	"math"

	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
)

// MaxRowCount is the revised row count when all rows of each shard are needed.
const MaxRowCount = int64(math.MaxInt32)

const noneCount = int64(-1)

type PaginationContext struct {
	OffsetSegment   statement.PaginationValueSegment
	RowCountSegment statement.PaginationValueSegment
	offset          int64
	rowCount        int64
}

func NewPaginationContext(limit *statement.LimitSegment, parameters []interface{}) (*PaginationContext, error) {
	p := &PaginationContext{
		OffsetSegment:   limit.Offset,
		RowCountSegment: limit.RowCount,
		offset:          noneCount,
		rowCount:        noneCount,
	}
	var err error
	if limit.Offset != nil {
		if p.offset, err = paginationValue(limit.Offset, parameters); err != nil {
			return nil, err
		}
	}
	if limit.RowCount != nil {
		if p.rowCount, err = paginationValue(limit.RowCount, parameters); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func paginationValue(segment statement.PaginationValueSegment, parameters []interface{}) (int64, error) {
	switch s := segment.(type) {
	case *statement.NumberLiteralLimitValueSegment:
		return s.Value, nil
	case *statement.ParameterMarkerLimitValueSegment:
		if s.ParameterIndex < 0 || s.ParameterIndex >= len(parameters) {
			return 0, errors.Errorf("parameter index %d of limit is out of range, parameter count: %d", s.ParameterIndex, len(parameters))
		}
		v, err := comparison.Normalize(parameters[s.ParameterIndex])
		if err == nil {
			if i, ok := v.(int64); ok && i >= 0 {
				return i, nil
			}
		}
		return 0, errors.Errorf("invalid limit value: %v", parameters[s.ParameterIndex])
	}
	return 0, errors.Errorf("unknown limit value segment: %T", segment)
}

func (p *PaginationContext) HasOffset() bool {
	return p.offset >= 0
}

func (p *PaginationContext) HasRowCount() bool {
	return p.rowCount >= 0
}

// Offset returns the actual offset, 0 when absent.
func (p *PaginationContext) Offset() int64 {
	if p.offset < 0 {
		return 0
	}
	return p.offset
}

// RowCount returns the actual row count, -1 when absent.
func (p *PaginationContext) RowCount() int64 {
	return p.rowCount
}

func parameterIndex(segment statement.PaginationValueSegment) (int, bool) {
	if s, ok := segment.(*statement.ParameterMarkerLimitValueSegment); ok {
		return s.ParameterIndex, true
	}
	return 0, false
}

func (p *PaginationContext) OffsetParameterIndex() (int, bool) {
	return parameterIndex(p.OffsetSegment)
}

func (p *PaginationContext) RowCountParameterIndex() (int, bool) {
	return parameterIndex(p.RowCountSegment)
}

// RevisedOffset is the offset sent to every shard, rows are skipped after merging.
func (p *PaginationContext) RevisedOffset() int64 {
	return 0
}

// RevisedRowCount is the row count sent to every shard so that merging still sees every row it needs.
func (p *PaginationContext) RevisedRowCount(ctx *SelectContext) int64 {
	if ctx != nil && len(ctx.GroupBy.Items) > 0 && !ctx.IsSameGroupByAndOrderBy() {
		return MaxRowCount
	}
	if !p.HasRowCount() {
		return MaxRowCount
	}
	return p.Offset() + p.rowCount
}
