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
	"fmt"
	"sort"

	"github.com/d5/tengo/v2"
	"github.com/pingcap/errors"
)

const resultVar = "_r"

// Eval runs a tengo expression and returns its result converted to go values,
// arrays become []interface{}, numbers int64 or float64.
func Eval(expression string, variables map[string]interface{}) (interface{}, error) {
	s := tengo.NewScript([]byte(fmt.Sprintf("%s := %s", resultVar, expression)))
	if err := s.Add("range", &tengo.UserFunction{Name: "range", Value: rangeFunction}); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.Add(name, variables[name]); err != nil {
			return nil, errors.Annotatef(err, "add variable '%s' to script fault", name)
		}
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, errors.Annotatef(err, "compile script fault, script: %s", expression)
	}
	if err = compiled.Run(); err != nil {
		return nil, errors.Annotatef(err, "run script fault, script: %s", expression)
	}
	return compiled.Get(resultVar).Value(), nil
}

// EvalList runs the expression and flattens the result into strings.
func EvalList(expression string, variables map[string]interface{}) ([]string, error) {
	v, err := Eval(expression, variables)
	if err != nil {
		return nil, err
	}
	switch r := v.(type) {
	case []interface{}:
		list := make([]string, len(r))
		for i, item := range r {
			list[i] = fmt.Sprint(item)
		}
		return list, nil
	case int64, float64, string, bool:
		return []string{fmt.Sprint(r)}, nil
	}
	return nil, errors.Errorf("script return invalid type, excepted array, number or string, script: %s, return type: %T", expression, v)
}

func rangeFunction(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	begin, ok := tengo.ToInt64(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "begin", Expected: "int", Found: args[0].TypeName()}
	}
	end, ok := tengo.ToInt64(args[1])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "end", Expected: "int", Found: args[1].TypeName()}
	}
	if begin > end {
		return nil, errors.New("the begin parameter must be less than or equal to the end argument for using 'range' function in inline expression")
	}

	array := make([]tengo.Object, 0, end-begin+1)
	for i := begin; i <= end; i++ {
		array = append(array, &tengo.Int{Value: i})
	}
	return &tengo.ImmutableArray{Value: array}, nil
}
