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

package script

import (
	"testing"

	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
)

func FlatInlineExpression(expression string, t *testing.T) []string {
	list, err := Flat(expression)
	assert.Nil(t, err, "flat inline expression fault: %s", expression)
	return list
}

func TestFlatNoScript(t *testing.T) {
	list := FlatInlineExpression("ds_1,ds_2, ds_3", t)
	assert.Equal(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatOneDepth(t *testing.T) {
	list := FlatInlineExpression("ds_${range(1,3)}", t)
	testkit.AssertStrArrayEquals(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatTwoDepth(t *testing.T) {
	list := FlatInlineExpression("ds${range(0,1)}.t_order${[0,1]}", t)
	assert.Equal(t, []string{"ds0.t_order0", "ds0.t_order1", "ds1.t_order0", "ds1.t_order1"}, list)
}

func TestFlatThirdDepth(t *testing.T) {
	list := FlatInlineExpression("ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}", t)
	assert.Equal(t, 24, len(list))
}

func TestDuplexMultiFlat(t *testing.T) {
	list := FlatInlineExpression("ds_${range(1,3)}_t${range(2,3)}, ds_${range(3,4)}_t${range(2,3)}", t)
	assert.Equal(t, 8, len(list))
}

func TestFlatScalarWithVariables(t *testing.T) {
	expr, err := NewInlineExpression("t_order${order_id % 2}")
	assert.Nil(t, err)
	v, err := expr.FlatScalar(map[string]interface{}{"order_id": 11})
	assert.Nil(t, err)
	assert.Equal(t, "t_order1", v)
}

func TestSyntaxError(t *testing.T) {
	_, err := NewInlineExpression("ds_$range(1,3)")
	assert.Error(t, err)

	_, err = NewInlineExpression("ds_${range(1,3)")
	assert.Error(t, err)
}

func TestRangeFunctionInvalid(t *testing.T) {
	_, err := Flat("ds_${range(3,1)}")
	assert.Error(t, err)
}
